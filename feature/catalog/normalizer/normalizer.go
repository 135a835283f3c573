package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"catalog-sync/core/utils"
	"catalog-sync/feature/catalog/models"
)

// Normalize turns one raw supplier record into a canonical product. It is
// pure and performs no I/O. It fails with *MalformedRecordError when the
// required fields (id, name, price, variations) are absent or wrongly shaped.
func Normalize(raw map[string]any) (*models.CanonicalProduct, error) {
	// Zero is rejected along with negatives: id 0 is GORM's zero value and
	// would match struct conditions against unrelated rows downstream.
	id, ok := toNumber(raw["id"])
	if !ok || id <= 0 {
		return nil, malformed("id", "must be a positive numeric identifier")
	}
	productID := uint64(id)

	name, ok := raw["name"].(string)
	if !ok || name == "" {
		return nil, malformed("name", "must be a non-empty string")
	}

	price, ok := toNumber(raw["price"])
	if !ok {
		return nil, malformed("price", "must be numeric")
	}

	rawVariations, ok := raw["variations"].([]any)
	if !ok {
		return nil, malformed("variations", "must be a list of variations")
	}

	status := models.ProductStatusActive
	if utils.ToBool(raw["isDeleted"]) {
		status = models.ProductStatusDeleted
	}

	// Base SKU is derived from the name and the external id.
	baseSKU := fmt.Sprintf("%s-%d", strings.ToUpper(strings.ReplaceAll(name, " ", "-")), productID)

	// Walk the variations once, collecting distinct color and material
	// values in first-seen order. The order carries no meaning but keeps
	// the output deterministic.
	var colors, materials []string
	seenColor := make(map[string]bool)
	seenMaterial := make(map[string]bool)

	type rawVariation struct {
		color, material string
		additional      float64
	}
	parsed := make([]rawVariation, 0, len(rawVariations))

	for i, rv := range rawVariations {
		vm, ok := rv.(map[string]any)
		if !ok {
			return nil, malformed("variations", fmt.Sprintf("entry %d is not an object", i))
		}
		color, ok := vm["color"].(string)
		if !ok || color == "" {
			return nil, malformed("variations", fmt.Sprintf("entry %d is missing color", i))
		}
		material, ok := vm["material"].(string)
		if !ok || material == "" {
			return nil, malformed("variations", fmt.Sprintf("entry %d is missing material", i))
		}

		if !seenColor[color] {
			seenColor[color] = true
			colors = append(colors, color)
		}
		if !seenMaterial[material] {
			seenMaterial[material] = true
			materials = append(materials, material)
		}

		parsed = append(parsed, rawVariation{
			color:      color,
			material:   material,
			additional: utils.ToFloat64(vm["additional_price"]),
		})
	}

	variations := make([]models.CanonicalVariation, 0, len(parsed))
	seenSKU := make(map[string]bool, len(parsed))

	for _, v := range parsed {
		sku := fmt.Sprintf("%s-%s-%s", baseSKU, strings.ToUpper(v.color), strings.ToUpper(v.material))
		if seenSKU[sku] {
			return nil, malformed("variations", fmt.Sprintf("duplicate variation %s/%s", v.color, v.material))
		}
		seenSKU[sku] = true

		variations = append(variations, models.CanonicalVariation{
			SKU:    sku,
			Price:  price + v.additional,
			Active: status == models.ProductStatusActive,
			Options: map[string]string{
				"color":    v.color,
				"material": v.material,
			},
		})
	}

	warehouses, err := parseWarehouses(raw["warehouses"])
	if err != nil {
		return nil, err
	}

	return &models.CanonicalProduct{
		ID:     productID,
		Name:   name,
		Price:  price,
		SKU:    baseSKU,
		Status: status,
		Variations: models.VariationData{
			Attributes: []models.CanonicalAttribute{
				{Name: "color", Values: colors},
				{Name: "material", Values: materials},
			},
			Variations: variations,
		},
		Warehouses: warehouses,
	}, nil
}

// parseWarehouses passes the optional warehouse section through unchanged.
// An absent section yields an empty payload.
func parseWarehouses(raw any) (models.WarehousePayload, error) {
	var payload models.WarehousePayload
	if raw == nil {
		return payload, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return payload, malformed("warehouses", "is not a valid warehouse payload")
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, malformed("warehouses", "is not a valid warehouse payload")
	}
	return payload, nil
}

// toNumber accepts the numeric shapes a decoded JSON document can carry.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
