package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cfp-backend/internal/goroutine"
	"github.com/ignatzorin/cfp-backend/internal/logger"
)

// Hub управляет WebSocket клиентами ревьюеров.
type Hub struct {
	mu         sync.RWMutex
	clients    map[int]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	log        *logrus.Entry
}

// message адресуется одному пользователю; userID 0 означает всех подключённых.
type message struct {
	userID  int
	payload []byte
}

// Envelope формат сообщения: "type" содержит имя события, "data" полезную нагрузку.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		log:        logger.For("ws_hub"),
	}
}

// Start запускает главный цикл хаба до отмены ctx.
func (h *Hub) Start(ctx context.Context) {
	goroutine.SafeGoWithContext(ctx, "ws_hub", h.Run)
}

// Run главный цикл хаба.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.closeSend()
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToUser отправляет событие всем соединениям пользователя.
func (h *Hub) BroadcastToUser(userID int, event string, data interface{}) error {
	return h.publish(userID, event, data)
}

// BroadcastToReviewers отправляет событие всем подключённым. Подключаться могут только ревьюеры.
func (h *Hub) BroadcastToReviewers(event string, data interface{}) {
	if err := h.publish(0, event, data); err != nil {
		h.log.WithError(err).WithField("event", event).Warn("не удалось отправить событие")
	}
}

func (h *Hub) publish(userID int, event string, data interface{}) error {
	raw, err := json.Marshal(Envelope{Type: event, Data: data})
	if err != nil {
		return fmt.Errorf("ws: не удалось сериализовать сообщение: %w", err)
	}

	select {
	case h.broadcast <- message{userID: userID, payload: raw}:
		return nil
	default:
		return fmt.Errorf("ws: очередь рассылки переполнена")
	}
}

// DisconnectUser закрывает все соединения пользователя, например после снятия роли ревьюера.
func (h *Hub) DisconnectUser(userID int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[userID] {
		c.closeSend()
	}
	delete(h.clients, userID)
}

// Connected количество подключённых пользователей.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, present := clients[client]; present {
			delete(clients, client)
			client.closeSend()
		}
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(msg message) {
	h.mu.RLock()
	var targets []*Client
	if msg.userID == 0 {
		for _, clients := range h.clients {
			for c := range clients {
				targets = append(targets, c)
			}
		}
	} else {
		for c := range h.clients[msg.userID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		select {
		case client.send <- msg.payload:
		default:
			// медленный клиент: отключаем
			h.removeClient(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.clients {
		for c := range clients {
			c.closeSend()
		}
		delete(h.clients, userID)
	}
}
