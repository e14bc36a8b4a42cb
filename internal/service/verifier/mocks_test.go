// Code generated by MockGen. DO NOT EDIT.
// Source: types.go

// Package verifier is a generated GoMock package.
package verifier

import (
	context "context"
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
	model "github.com/goodnatureofminers/chainverify7000-backend/internal/model"
)

// MockBlockSource is a mock of BlockSource interface.
type MockBlockSource struct {
	ctrl     *gomock.Controller
	recorder *MockBlockSourceMockRecorder
}

// MockBlockSourceMockRecorder is the mock recorder for MockBlockSource.
type MockBlockSourceMockRecorder struct {
	mock *MockBlockSource
}

// NewMockBlockSource creates a new mock instance.
func NewMockBlockSource(ctrl *gomock.Controller) *MockBlockSource {
	mock := &MockBlockSource{ctrl: ctrl}
	mock.recorder = &MockBlockSourceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBlockSource) EXPECT() *MockBlockSourceMockRecorder {
	return m.recorder
}

// Block mocks base method.
func (m *MockBlockSource) Block(height uint32) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Block", height)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Block indicates an expected call of Block.
func (mr *MockBlockSourceMockRecorder) Block(height interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Block", reflect.TypeOf((*MockBlockSource)(nil).Block), height)
}

// MockFailureSink is a mock of FailureSink interface.
type MockFailureSink struct {
	ctrl     *gomock.Controller
	recorder *MockFailureSinkMockRecorder
}

// MockFailureSinkMockRecorder is the mock recorder for MockFailureSink.
type MockFailureSinkMockRecorder struct {
	mock *MockFailureSink
}

// NewMockFailureSink creates a new mock instance.
func NewMockFailureSink(ctrl *gomock.Controller) *MockFailureSink {
	mock := &MockFailureSink{ctrl: ctrl}
	mock.recorder = &MockFailureSinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockFailureSink) EXPECT() *MockFailureSinkMockRecorder {
	return m.recorder
}

// Add mocks base method.
func (m *MockFailureSink) Add(ctx context.Context, failure model.ScriptFailure) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Add", ctx, failure)
	ret0, _ := ret[0].(error)
	return ret0
}

// Add indicates an expected call of Add.
func (mr *MockFailureSinkMockRecorder) Add(ctx, failure interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Add", reflect.TypeOf((*MockFailureSink)(nil).Add), ctx, failure)
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

// AddOutcomes mocks base method.
func (m *MockMetrics) AddOutcomes(outcome string, n int) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "AddOutcomes", outcome, n)
}

// AddOutcomes indicates an expected call of AddOutcomes.
func (mr *MockMetricsMockRecorder) AddOutcomes(outcome, n interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddOutcomes", reflect.TypeOf((*MockMetrics)(nil).AddOutcomes), outcome, n)
}

// SetVerifiedHeight mocks base method.
func (m *MockMetrics) SetVerifiedHeight(height uint32) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "SetVerifiedHeight", height)
}

// SetVerifiedHeight indicates an expected call of SetVerifiedHeight.
func (mr *MockMetricsMockRecorder) SetVerifiedHeight(height interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetVerifiedHeight", reflect.TypeOf((*MockMetrics)(nil).SetVerifiedHeight), height)
}
