package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sh1vam31/Food-Inventory-Backend/internal/adapter/logger"
	"github.com/sh1vam31/Food-Inventory-Backend/internal/interfaces"
)

// AlertHandler consumes low-stock alert messages and surfaces them to the
// operator console.
type AlertHandler struct {
	logger logger.Logger
}

func NewAlertHandler(logger logger.Logger) *AlertHandler {
	return &AlertHandler{logger: logger}
}

func (h *AlertHandler) HandleAlert(ctx context.Context, body []byte) error {
	var alert interfaces.LowStockAlert
	if err := json.Unmarshal(body, &alert); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse low-stock alert", "", nil, err)
		return err
	}

	h.logger.Info("low_stock_alert", fmt.Sprintf("Material %q is low on stock", alert.Name), "",
		map[string]interface{}{
			"raw_material_id": alert.RawMaterialID,
			"quantity":        alert.QuantityAvailable,
			"threshold":       alert.MinimumThreshold,
		})

	fmt.Printf("LOW STOCK: %s at %.2f %s (threshold %.2f %s)\n",
		alert.Name, alert.QuantityAvailable, alert.Unit, alert.MinimumThreshold, alert.Unit)

	return nil
}
