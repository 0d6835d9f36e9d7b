package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) GetUser(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) CreateUser(params CreateUserParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) UpdateLastLogin(username string) error {
	args := m.Called(username)
	return args.Error(0)
}
func (m *MockChatRepository) IncrementMessageCount(username string) error {
	args := m.Called(username)
	return args.Error(0)
}
func (m *MockChatRepository) SaveMessage(msg Message) (int64, error) {
	args := m.Called(msg)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChatRepository) MessageHistory(room string, limit int) ([]Message, error) {
	args := m.Called(room, limit)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) Achievements(username string) ([]string, error) {
	args := m.Called(username)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockChatRepository) UnlockAchievement(username, achievement string) (bool, error) {
	args := m.Called(username, achievement)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) AddReaction(messageId int64, username, reaction string) (bool, error) {
	args := m.Called(messageId, username, reaction)
	return args.Bool(0), args.Error(1)
}
