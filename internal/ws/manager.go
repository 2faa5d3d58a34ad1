package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client представляет собой одно WebSocket соединение с идентификатором пользователя.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	send   chan []byte
}

// ConnectionManager управляет активными WebSocket соединениями.
type ConnectionManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewConnectionManager создает и запускает новый менеджер соединений.
func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	m := &ConnectionManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.Named("ConnectionManager"),
	}
	go m.run()
	return m
}

// run обрабатывает регистрацию и дерегистрацию клиентов.
func (m *ConnectionManager) run() {
	m.logger.Info("ConnectionManager started")
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			// Если клиент с таким UserID уже есть, закрываем старое соединение
			if oldClient, ok := m.clients[client.UserID]; ok {
				m.logger.Info("Closing previous connection", zap.String("userID", client.UserID))
				close(oldClient.send)
				if oldClient.Conn != nil {
					_ = oldClient.Conn.Close()
				}
			}
			m.clients[client.UserID] = client
			m.mu.Unlock()
			m.logger.Info("Client registered", zap.String("userID", client.UserID))

		case client := <-m.unregister:
			m.mu.Lock()
			// Снимаем только то соединение, которое и зарегистрировано:
			// повторный логин уже мог заменить его на новое.
			if current, ok := m.clients[client.UserID]; ok && current == client {
				delete(m.clients, client.UserID)
				close(client.send)
				m.logger.Info("Client unregistered", zap.String("userID", client.UserID))
			}
			m.mu.Unlock()
		}
	}
}

// RegisterClient регистрирует нового клиента.
func (m *ConnectionManager) RegisterClient(client *Client) {
	m.register <- client
}

// UnregisterClient удаляет клиента.
func (m *ConnectionManager) UnregisterClient(client *Client) {
	m.unregister <- client
}

// SendToUser отправляет сообщение конкретному пользователю.
// Возвращает true, если пользователь онлайн и сообщение поставлено в очередь.
func (m *ConnectionManager) SendToUser(userID string, message []byte) bool {
	m.mu.RLock()
	client, ok := m.clients[userID]
	m.mu.RUnlock()

	if !ok {
		m.logger.Debug("User is offline", zap.String("userID", userID))
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		// Канал переполнен или закрыт (клиент отключается)
		m.logger.Warn("Send queue full, message dropped", zap.String("userID", userID))
		return false
	}
}

// Online reports whether the user currently holds a connection.
func (m *ConnectionManager) Online(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.clients[userID]
	return ok
}
