package join

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type Metrics interface {
	AddJoinedRecords(n int)
	AddUnmatchedInputs(n int)
}
