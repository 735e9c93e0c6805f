package handlers

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/bidflow/backend/internal/engine"
	"github.com/bidflow/backend/internal/metrics"
	"github.com/bidflow/backend/internal/prediction"
	"github.com/bidflow/backend/pkg/logger"
)

// StreamHandler scores tender batches over a WebSocket. Results stream back
// as each prediction completes; ordering within a batch is not guaranteed,
// so every result echoes its bidId.
type StreamHandler struct {
	service *prediction.Service
	workers int
}

func NewStreamHandler(service *prediction.Service, workers int) *StreamHandler {
	if workers <= 0 {
		workers = 8
	}
	return &StreamHandler{
		service: service,
		workers: workers,
	}
}

type batchRequest struct {
	Type    string                   `json:"type"`
	Tenders []engine.PredictionInput `json:"tenders"`
}

func (h *StreamHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("Stream connection established")

	defer func() {
		c.Close()
		logger.Info("Stream connection closed")
	}()

	for {
		var req batchRequest
		if err := c.ReadJSON(&req); err != nil {
			logger.Debug("Stream read ended", zap.Error(err))
			break
		}

		if req.Type != "batch" {
			h.send(c, map[string]interface{}{
				"type":  "error",
				"error": "unknown message type",
			})
			continue
		}
		if len(req.Tenders) == 0 {
			h.send(c, map[string]interface{}{
				"type":  "error",
				"error": "empty batch",
			})
			continue
		}

		metrics.StreamBatchSize.Observe(float64(len(req.Tenders)))
		logger.Info("Processing prediction batch", zap.Int("tenders", len(req.Tenders)))

		h.streamBatch(c, req.Tenders)
	}
}

// streamBatch fans tenders out across the worker pool. Predictions are
// independent, so workers never contend; only the socket write is serialized.
func (h *StreamHandler) streamBatch(c *websocket.Conn, tenders []engine.PredictionInput) {
	ctx := context.Background()

	jobs := make(chan engine.PredictionInput)
	var wg sync.WaitGroup
	var writeMu sync.Mutex

	write := func(msg map[string]interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := c.WriteJSON(msg); err != nil {
			logger.Warn("Failed to write stream message", zap.Error(err))
		}
	}

	for i := 0; i < h.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range jobs {
				result, err := h.service.Predict(ctx, input)
				if err != nil {
					write(map[string]interface{}{
						"type":  "result_error",
						"bidId": input.BidID,
						"error": err.Error(),
					})
					continue
				}
				write(map[string]interface{}{
					"type":   "result",
					"bidId":  result.BidID,
					"result": result,
				})
			}
		}()
	}

	for _, input := range tenders {
		jobs <- input
	}
	close(jobs)
	wg.Wait()

	write(map[string]interface{}{
		"type":  "complete",
		"count": len(tenders),
	})
}

func (h *StreamHandler) send(c *websocket.Conn, msg map[string]interface{}) {
	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to write stream message", zap.Error(err))
	}
}
