package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"facturador/internal/model"
)

// codec serializes an order for one deployment variant and extracts the
// server-assigned identifier from that variant's response body. One
// implementation per wire format; the submitter picks by configuration.
type codec interface {
	contentType() string
	encode(o model.Order) ([]byte, error)
	orderID(body []byte) (string, error)
}

func codecFor(f model.WireFormat) codec {
	if f == model.FormatXML {
		return xmlCodec{}
	}
	return jsonCodec{}
}

// === JSON variant ===

type jsonCodec struct{}

type jsonOrderItem struct {
	ID       string `json:"id"`
	Cantidad int    `json:"cantidad"`
}

type jsonOrder struct {
	ClienteID int             `json:"cliente_id"`
	Items     []jsonOrderItem `json:"items"`
}

func (jsonCodec) contentType() string { return "application/json" }

func (jsonCodec) encode(o model.Order) ([]byte, error) {
	items := make([]jsonOrderItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = jsonOrderItem{ID: it.ProductID, Cantidad: it.Quantity}
	}
	return json.Marshal(jsonOrder{ClienteID: o.CustomerID, Items: items})
}

// orderID accepts pedido_id as either a JSON string or a number; both
// appear in the wild depending on the service build.
func (jsonCodec) orderID(body []byte) (string, error) {
	var resp struct {
		PedidoID any `json:"pedido_id"`
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&resp); err != nil {
		return "", fmt.Errorf("decoding order response: %w", err)
	}

	var id string
	switch v := resp.PedidoID.(type) {
	case string:
		id = v
	case json.Number:
		id = v.String()
	case nil:
	default:
		return "", fmt.Errorf("order response has a non-scalar pedido_id")
	}
	if id == "" {
		return "", fmt.Errorf("order response has no pedido_id")
	}
	return id, nil
}

// === XML variant ===

type xmlCodec struct{}

func (xmlCodec) contentType() string { return "application/xml" }

func (xmlCodec) encode(o model.Order) ([]byte, error) {
	doc := etree.NewDocument()
	pedido := doc.CreateElement("pedido")
	pedido.CreateElement("cliente_id").SetText(fmt.Sprintf("%d", o.CustomerID))
	for _, it := range o.Items {
		item := pedido.CreateElement("item")
		item.CreateElement("id").SetText(it.ProductID)
		item.CreateElement("cantidad").SetText(fmt.Sprintf("%d", it.Quantity))
	}
	return doc.WriteToBytes()
}

// orderID locates <pedido_id> anywhere in the response tree; the service
// wraps it in a <response> envelope.
func (xmlCodec) orderID(body []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", fmt.Errorf("decoding order response: %w", err)
	}
	el := doc.FindElement("//pedido_id")
	if el == nil {
		return "", fmt.Errorf("order response has no pedido_id")
	}
	id := strings.TrimSpace(el.Text())
	if id == "" {
		return "", fmt.Errorf("order response has an empty pedido_id")
	}
	return id, nil
}
