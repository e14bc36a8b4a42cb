package extract

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// BlockSource returns the serialized block at a height, typically the
// chunked store behind the height index.
type BlockSource interface {
	Block(height uint32) ([]byte, error)
}

type Metrics interface {
	SetExtractedHeight(kind string, height uint32)
	AddExtractedRecords(kind string, n int)
}
