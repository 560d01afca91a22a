package ledger

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockClient is a testify mock of Client.
type MockClient struct {
	sync.Mutex
	mock.Mock
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetAccount(ctx context.Context, id AccountID) (*Account, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(id)
	account, _ := args.Get(0).(*Account)
	return account, args.Error(1)
}

func (m *MockClient) GetUnconfirmedTransactions(ctx context.Context, id AccountID) ([]Transaction, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(id)
	txns, _ := args.Get(0).([]Transaction)
	return txns, args.Error(1)
}

func (m *MockClient) GetSuggestedFees(ctx context.Context) (SuggestedFees, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called()
	return args.Get(0).(SuggestedFees), args.Error(1)
}

func (m *MockClient) SendMessage(ctx context.Context, sendArgs SendMessageArgs) (*BroadcastResult, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(sendArgs)
	result, _ := args.Get(0).(*BroadcastResult)
	return result, args.Error(1)
}

func (m *MockClient) SendAmount(ctx context.Context, sendArgs SendAmountArgs) (*BroadcastResult, error) {
	m.Lock()
	defer m.Unlock()

	args := m.Called(sendArgs)
	result, _ := args.Get(0).(*BroadcastResult)
	return result, args.Error(1)
}
