package ws

import (
	"net/http"
	"time"

	"techstore-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Время, разрешенное для записи сообщения клиенту.
	writeWait = 10 * time.Second
	// Время, разрешенное для чтения следующего pong сообщения от клиента.
	pongWait = 60 * time.Second
	// Отправлять пинги клиенту с этим периодом. Должно быть меньше pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Максимальный размер сообщения, разрешенный от клиента.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler обрабатывает запросы на установку WebSocket соединения.
type Handler struct {
	manager     *ConnectionManager
	authService service.AuthService
	logger      *zap.Logger
}

// NewHandler создает новый обработчик WebSocket.
func NewHandler(manager *ConnectionManager, authService service.AuthService, logger *zap.Logger) *Handler {
	return &Handler{
		manager:     manager,
		authService: authService,
		logger:      logger.Named("WebSocketHandler"),
	}
}

// ServeWS обрабатывает входящий HTTP запрос для WebSocket.
// Токен передается query-параметром 'token'; cookie сюда не доезжает
// при кросс-доменном подключении.
func (h *Handler) ServeWS(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		h.logger.Warn("Missing 'token' query parameter")
		c.String(http.StatusUnauthorized, "Unauthorized: Missing token")
		return
	}

	claims, err := h.authService.VerifyToken(c.Request.Context(), tokenString)
	if err != nil {
		h.logger.Warn("Invalid token on WebSocket connect", zap.Error(err))
		c.String(http.StatusUnauthorized, "Unauthorized: invalid token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader уже записал ответ
		h.logger.Error("Failed to upgrade connection", zap.Error(err), zap.String("userID", claims.UserID.String()))
		return
	}

	userID := claims.UserID.String()
	h.logger.Info("WebSocket connection established", zap.String("userID", userID))

	client := &Client{
		UserID: userID,
		Conn:   conn,
		send:   make(chan []byte, 256),
	}

	h.manager.RegisterClient(client)

	go client.writePump(h.logger.With(zap.String("userID", userID)))
	go client.readPump(h.manager, h.logger.With(zap.String("userID", userID)))
}

// readPump откачивает сообщения от WebSocket соединения. Клиентские
// сообщения не обрабатываются, соединение служит только для уведомлений.
func (c *Client) readPump(manager *ConnectionManager, logger *zap.Logger) {
	defer func() {
		manager.UnregisterClient(c)
		_ = c.Conn.Close()
		logger.Debug("readPump finished")
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error", zap.Error(err))
			} else {
				logger.Info("WebSocket connection closed")
			}
			break
		}
		logger.Debug("Ignoring message from client", zap.Int("size", len(message)))
	}
}

// writePump откачивает сообщения из канала send в WebSocket соединение.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		logger.Debug("writePump finished")
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}
