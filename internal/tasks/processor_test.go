package tasks

import "testing"

func TestDecodePayload(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]interface{}
		want   TaskPayload
	}{
		{
			name: "order created",
			values: map[string]interface{}{
				"type":       "order.created",
				"orderId":    "ord-1",
				"buyerId":    "usr-1",
				"totalCents": "4200",
			},
			want: TaskPayload{Type: "order.created", OrderID: "ord-1", BuyerID: "usr-1", TotalCents: "4200"},
		},
		{
			name: "status change",
			values: map[string]interface{}{
				"type":    "order.status.changed",
				"orderId": "ord-2",
				"status":  "cancelled",
			},
			want: TaskPayload{Type: "order.status.changed", OrderID: "ord-2", Status: "cancelled"},
		},
		{
			name: "photo removal",
			values: map[string]interface{}{
				"type": "product.photo.removed",
				"key":  "products/p1/photo.jpg",
			},
			want: TaskPayload{Type: "product.photo.removed", Key: "products/p1/photo.jpg"},
		},
		{
			name: "extra fields ignored",
			values: map[string]interface{}{
				"type":   "orders.expire",
				"source": "scheduler",
			},
			want: TaskPayload{Type: "orders.expire"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got TaskPayload
			if err := decodePayload(tc.values, &got); err != nil {
				t.Fatalf("decodePayload: %v", err)
			}
			if got != tc.want {
				t.Fatalf("decoded %+v, want %+v", got, tc.want)
			}
		})
	}
}
