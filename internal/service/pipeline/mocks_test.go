// Code generated by MockGen. DO NOT EDIT.
// Source: types.go

// Package pipeline is a generated GoMock package.
package pipeline

import (
	context "context"
	reflect "reflect"
	time "time"

	gomock "github.com/golang/mock/gomock"
	extract "github.com/goodnatureofminers/chainverify7000-backend/internal/extract"
	join "github.com/goodnatureofminers/chainverify7000-backend/internal/join"
	model "github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	verifier "github.com/goodnatureofminers/chainverify7000-backend/internal/service/verifier"
)

// MockExtractor is a mock of Extractor interface.
type MockExtractor struct {
	ctrl     *gomock.Controller
	recorder *MockExtractorMockRecorder
}

// MockExtractorMockRecorder is the mock recorder for MockExtractor.
type MockExtractorMockRecorder struct {
	mock *MockExtractor
}

// NewMockExtractor creates a new mock instance.
func NewMockExtractor(ctrl *gomock.Controller) *MockExtractor {
	mock := &MockExtractor{ctrl: ctrl}
	mock.recorder = &MockExtractorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockExtractor) EXPECT() *MockExtractorMockRecorder {
	return m.recorder
}

// ExtractInputs mocks base method.
func (m *MockExtractor) ExtractInputs(ctx context.Context, path string, start, end uint32) (extract.Stats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ExtractInputs", ctx, path, start, end)
	ret0, _ := ret[0].(extract.Stats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ExtractInputs indicates an expected call of ExtractInputs.
func (mr *MockExtractorMockRecorder) ExtractInputs(ctx, path, start, end interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ExtractInputs", reflect.TypeOf((*MockExtractor)(nil).ExtractInputs), ctx, path, start, end)
}

// ExtractOutputs mocks base method.
func (m *MockExtractor) ExtractOutputs(ctx context.Context, path string, start, end uint32) (extract.Stats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ExtractOutputs", ctx, path, start, end)
	ret0, _ := ret[0].(extract.Stats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ExtractOutputs indicates an expected call of ExtractOutputs.
func (mr *MockExtractorMockRecorder) ExtractOutputs(ctx, path, start, end interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ExtractOutputs", reflect.TypeOf((*MockExtractor)(nil).ExtractOutputs), ctx, path, start, end)
}

// MockSorter is a mock of Sorter interface.
type MockSorter struct {
	ctrl     *gomock.Controller
	recorder *MockSorterMockRecorder
}

// MockSorterMockRecorder is the mock recorder for MockSorter.
type MockSorterMockRecorder struct {
	mock *MockSorter
}

// NewMockSorter creates a new mock instance.
func NewMockSorter(ctrl *gomock.Controller) *MockSorter {
	mock := &MockSorter{ctrl: ctrl}
	mock.recorder = &MockSorterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockSorter) EXPECT() *MockSorterMockRecorder {
	return m.recorder
}

// SortInputs mocks base method.
func (m *MockSorter) SortInputs(ctx context.Context, inPath, outPath string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SortInputs", ctx, inPath, outPath)
	ret0, _ := ret[0].(error)
	return ret0
}

// SortInputs indicates an expected call of SortInputs.
func (mr *MockSorterMockRecorder) SortInputs(ctx, inPath, outPath interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SortInputs", reflect.TypeOf((*MockSorter)(nil).SortInputs), ctx, inPath, outPath)
}

// SortJoined mocks base method.
func (m *MockSorter) SortJoined(ctx context.Context, inPath, outPath string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SortJoined", ctx, inPath, outPath)
	ret0, _ := ret[0].(error)
	return ret0
}

// SortJoined indicates an expected call of SortJoined.
func (mr *MockSorterMockRecorder) SortJoined(ctx, inPath, outPath interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SortJoined", reflect.TypeOf((*MockSorter)(nil).SortJoined), ctx, inPath, outPath)
}

// SortOutputs mocks base method.
func (m *MockSorter) SortOutputs(ctx context.Context, inPath, outPath string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SortOutputs", ctx, inPath, outPath)
	ret0, _ := ret[0].(error)
	return ret0
}

// SortOutputs indicates an expected call of SortOutputs.
func (mr *MockSorterMockRecorder) SortOutputs(ctx, inPath, outPath interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SortOutputs", reflect.TypeOf((*MockSorter)(nil).SortOutputs), ctx, inPath, outPath)
}

// MockJoiner is a mock of Joiner interface.
type MockJoiner struct {
	ctrl     *gomock.Controller
	recorder *MockJoinerMockRecorder
}

// MockJoinerMockRecorder is the mock recorder for MockJoiner.
type MockJoinerMockRecorder struct {
	mock *MockJoiner
}

// NewMockJoiner creates a new mock instance.
func NewMockJoiner(ctrl *gomock.Controller) *MockJoiner {
	mock := &MockJoiner{ctrl: ctrl}
	mock.recorder = &MockJoinerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockJoiner) EXPECT() *MockJoinerMockRecorder {
	return m.recorder
}

// Run mocks base method.
func (m *MockJoiner) Run(ctx context.Context, inputsPath, outputsPath, joinedPath string) (join.Stats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Run", ctx, inputsPath, outputsPath, joinedPath)
	ret0, _ := ret[0].(join.Stats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Run indicates an expected call of Run.
func (mr *MockJoinerMockRecorder) Run(ctx, inputsPath, outputsPath, joinedPath interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Run", reflect.TypeOf((*MockJoiner)(nil).Run), ctx, inputsPath, outputsPath, joinedPath)
}

// MockVerifier is a mock of Verifier interface.
type MockVerifier struct {
	ctrl     *gomock.Controller
	recorder *MockVerifierMockRecorder
}

// MockVerifierMockRecorder is the mock recorder for MockVerifier.
type MockVerifierMockRecorder struct {
	mock *MockVerifier
}

// NewMockVerifier creates a new mock instance.
func NewMockVerifier(ctrl *gomock.Controller) *MockVerifier {
	mock := &MockVerifier{ctrl: ctrl}
	mock.recorder = &MockVerifierMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockVerifier) EXPECT() *MockVerifierMockRecorder {
	return m.recorder
}

// Run mocks base method.
func (m *MockVerifier) Run(ctx context.Context, joinedPath string, start, end uint32) (verifier.Stats, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Run", ctx, joinedPath, start, end)
	ret0, _ := ret[0].(verifier.Stats)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Run indicates an expected call of Run.
func (mr *MockVerifierMockRecorder) Run(ctx, joinedPath, start, end interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Run", reflect.TypeOf((*MockVerifier)(nil).Run), ctx, joinedPath, start, end)
}

// MockReporter is a mock of Reporter interface.
type MockReporter struct {
	ctrl     *gomock.Controller
	recorder *MockReporterMockRecorder
}

// MockReporterMockRecorder is the mock recorder for MockReporter.
type MockReporterMockRecorder struct {
	mock *MockReporter
}

// NewMockReporter creates a new mock instance.
func NewMockReporter(ctrl *gomock.Controller) *MockReporter {
	mock := &MockReporter{ctrl: ctrl}
	mock.recorder = &MockReporterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockReporter) EXPECT() *MockReporterMockRecorder {
	return m.recorder
}

// InsertRunReports mocks base method.
func (m *MockReporter) InsertRunReports(ctx context.Context, reports []model.RunReport) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InsertRunReports", ctx, reports)
	ret0, _ := ret[0].(error)
	return ret0
}

// InsertRunReports indicates an expected call of InsertRunReports.
func (mr *MockReporterMockRecorder) InsertRunReports(ctx, reports interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InsertRunReports", reflect.TypeOf((*MockReporter)(nil).InsertRunReports), ctx, reports)
}

// MaxReportedEndHeight mocks base method.
func (m *MockReporter) MaxReportedEndHeight(ctx context.Context, network model.Network) (uint32, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MaxReportedEndHeight", ctx, network)
	ret0, _ := ret[0].(uint32)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// MaxReportedEndHeight indicates an expected call of MaxReportedEndHeight.
func (mr *MockReporterMockRecorder) MaxReportedEndHeight(ctx, network interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MaxReportedEndHeight", reflect.TypeOf((*MockReporter)(nil).MaxReportedEndHeight), ctx, network)
}

// MockHeightIndex is a mock of HeightIndex interface.
type MockHeightIndex struct {
	ctrl     *gomock.Controller
	recorder *MockHeightIndexMockRecorder
}

// MockHeightIndexMockRecorder is the mock recorder for MockHeightIndex.
type MockHeightIndexMockRecorder struct {
	mock *MockHeightIndex
}

// NewMockHeightIndex creates a new mock instance.
func NewMockHeightIndex(ctrl *gomock.Controller) *MockHeightIndex {
	mock := &MockHeightIndex{ctrl: ctrl}
	mock.recorder = &MockHeightIndexMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockHeightIndex) EXPECT() *MockHeightIndexMockRecorder {
	return m.recorder
}

// MaxContiguousHeight mocks base method.
func (m *MockHeightIndex) MaxContiguousHeight() (uint32, bool) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MaxContiguousHeight")
	ret0, _ := ret[0].(uint32)
	ret1, _ := ret[1].(bool)
	return ret0, ret1
}

// MaxContiguousHeight indicates an expected call of MaxContiguousHeight.
func (mr *MockHeightIndexMockRecorder) MaxContiguousHeight() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MaxContiguousHeight", reflect.TypeOf((*MockHeightIndex)(nil).MaxContiguousHeight))
}

// MockMetrics is a mock of Metrics interface.
type MockMetrics struct {
	ctrl     *gomock.Controller
	recorder *MockMetricsMockRecorder
}

// MockMetricsMockRecorder is the mock recorder for MockMetrics.
type MockMetricsMockRecorder struct {
	mock *MockMetrics
}

// NewMockMetrics creates a new mock instance.
func NewMockMetrics(ctrl *gomock.Controller) *MockMetrics {
	mock := &MockMetrics{ctrl: ctrl}
	mock.recorder = &MockMetricsMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockMetrics) EXPECT() *MockMetricsMockRecorder {
	return m.recorder
}

// ObserveStage mocks base method.
func (m *MockMetrics) ObserveStage(stage string, err error, started time.Time) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ObserveStage", stage, err, started)
}

// ObserveStage indicates an expected call of ObserveStage.
func (mr *MockMetricsMockRecorder) ObserveStage(stage, err, started interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ObserveStage", reflect.TypeOf((*MockMetrics)(nil).ObserveStage), stage, err, started)
}
