package orders

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/angelmondragon/shopdesk-backend/internal/catalog"
	"github.com/angelmondragon/shopdesk-backend/internal/contacts"
	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

// ItemList decodes either a JSON array or a JSON string that holds one.
type ItemList[T any] []T

func (l *ItemList[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return err
		}
		trimmed = []byte(encoded)
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

type AddItem struct {
	ProductInfo types.LooseID `json:"product_info"`
	Quantity    types.LooseID `json:"quantity"`
}

type UpdateItem struct {
	ID       types.LooseID `json:"id"`
	Quantity types.LooseID `json:"quantity"`
}

// UnmarshalJSON never fails on a single entry. A value of the wrong JSON
// type is kept as its raw text, which no id parser accepts, so the entry is
// skipped instead of rejecting the whole batch.
func (u *UpdateItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*u = UpdateItem{ID: unusable(data)}
		return nil
	}
	*u = UpdateItem{ID: lenientID(raw.ID), Quantity: lenientID(raw.Quantity)}
	return nil
}

func lenientID(raw json.RawMessage) types.LooseID {
	if len(raw) == 0 {
		return ""
	}
	var id types.LooseID
	if err := id.UnmarshalJSON(raw); err != nil {
		return unusable(raw)
	}
	return id
}

func unusable(raw []byte) types.LooseID {
	return types.LooseID("invalid:" + string(bytes.TrimSpace(raw)))
}

// AddItemsRequest is the body of POST /basket.
type AddItemsRequest struct {
	Items ItemList[AddItem] `json:"items"`
}

// UpdateItemsRequest is the body of PUT /basket.
type UpdateItemsRequest struct {
	Items ItemList[UpdateItem] `json:"items"`
}

// RemoveItemsRequest is the body of DELETE /basket: a comma separated id list.
type RemoveItemsRequest struct {
	Items string `json:"items"`
}

type SubmitRequest struct {
	ID      types.LooseID `json:"id"`
	Contact types.LooseID `json:"contact"`
}

type ConfirmRequest struct {
	ID types.LooseID `json:"id"`
}

type OrderItemDTO struct {
	ID          uint64             `json:"id"`
	ProductInfo catalog.ListingDTO `json:"product_info"`
	Quantity    int64              `json:"quantity"`
	Sum         types.Amount       `json:"sum"`
}

type OrderDTO struct {
	ID        uint64               `json:"id"`
	State     enums.OrderState     `json:"state"`
	CreatedAt time.Time            `json:"created_at"`
	Contact   *contacts.ContactDTO `json:"contact"`
	Items     []OrderItemDTO       `json:"ordered_items"`
	TotalSum  types.Amount         `json:"total_sum"`
}

// FromModel renders an order with whatever items were loaded; totals cover
// those items only.
func FromModel(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:        order.ID,
		State:     order.State,
		CreatedAt: order.CreatedAt,
		Items:     make([]OrderItemDTO, 0, len(order.Items)),
	}
	if order.Contact != nil {
		contact := contacts.FromModel(*order.Contact)
		dto.Contact = &contact
	}
	for _, item := range order.Items {
		line := OrderItemDTO{ID: item.ID, Quantity: item.Quantity}
		if item.ProductInfo != nil {
			line.ProductInfo = catalog.ListingFromModel(*item.ProductInfo)
			line.Sum = types.LineAmount(item.Quantity, item.ProductInfo.Price)
		}
		dto.TotalSum = dto.TotalSum.Add(line.Sum)
		dto.Items = append(dto.Items, line)
	}
	return dto
}
