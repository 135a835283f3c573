package supplier

import "context"

// mockPayload is a small, well-formed catalog used for local development and
// smoke tests without a live supplier endpoint.
const mockPayload = `[
  {
    "id": 10,
    "name": "Desk",
    "price": 120.5,
    "isDeleted": false,
    "variations": [
      {"color": "red", "material": "wood", "additional_price": 5},
      {"color": "blue", "material": "metal", "additional_price": 0}
    ],
    "warehouses": [
      {
        "name": "Main",
        "location": "Amman",
        "inventories": [
          {"variation_sku": "DESK-10-RED-WOOD", "quantity": 7},
          {"variation_sku": "DESK-10-BLUE-METAL", "quantity": 3}
        ]
      }
    ]
  },
  {
    "id": 11,
    "name": "Office Chair",
    "price": 60,
    "variations": [
      {"color": "black", "material": "leather", "additional_price": 12.5}
    ]
  }
]`

// MockSupplier serves a fixed in-memory catalog. It is the default source so
// a fresh checkout can run the full pipeline with no external dependencies.
type MockSupplier struct{}

func NewMockSupplier() *MockSupplier { return &MockSupplier{} }

func (s *MockSupplier) Name() string { return "mock" }

func (s *MockSupplier) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(mockPayload), nil
}
