// Code generated by MockGen. DO NOT EDIT.
// Source: types.go

// Package extract is a generated GoMock package.
package extract

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
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

// AddExtractedRecords mocks base method.
func (m *MockMetrics) AddExtractedRecords(kind string, n int) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "AddExtractedRecords", kind, n)
}

// AddExtractedRecords indicates an expected call of AddExtractedRecords.
func (mr *MockMetricsMockRecorder) AddExtractedRecords(kind, n interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddExtractedRecords", reflect.TypeOf((*MockMetrics)(nil).AddExtractedRecords), kind, n)
}

// SetExtractedHeight mocks base method.
func (m *MockMetrics) SetExtractedHeight(kind string, height uint32) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "SetExtractedHeight", kind, height)
}

// SetExtractedHeight indicates an expected call of SetExtractedHeight.
func (mr *MockMetricsMockRecorder) SetExtractedHeight(kind, height interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SetExtractedHeight", reflect.TypeOf((*MockMetrics)(nil).SetExtractedHeight), kind, height)
}
