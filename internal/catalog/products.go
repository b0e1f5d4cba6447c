// Package catalog defines the fixed product configuration space for framed
// prints: sizes, frame options, paper finish and theme catalog.
package catalog

import (
	"fmt"
	"strings"
)

const (
	// PaperFinish is the only finish currently offered.
	PaperFinish = "glossy"

	// MaxQuantity caps the quantity of a single line item.
	MaxQuantity = 10
)

// Size is a print size with its base unit price in minor currency units.
type Size struct {
	Value        string `json:"value"`
	Label        string `json:"label"`
	DimensionsCm string `json:"dimensionsCm"`
	PriceBani    int    `json:"priceBani"`
}

// FrameOption is a selectable frame color or model.
type FrameOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var sizes = []Size{
	{Value: "A4", Label: "A4", DimensionsCm: "21x29.7 cm", PriceBani: 8999},
	{Value: "A3", Label: "A3", DimensionsCm: "29.7x42 cm", PriceBani: 12999},
}

var frameColors = []FrameOption{
	{Value: "BLACK_MATTE", Label: "Black Matte"},
	{Value: "WHITE_MATTE", Label: "White Matte"},
	{Value: "WALNUT", Label: "Walnut"},
	{Value: "OAK", Label: "Oak"},
	{Value: "CHAMPAGNE_GOLD", Label: "Champagne Gold"},
	{Value: "BRUSHED_SILVER", Label: "Brushed Silver"},
}

var frameModels = []FrameOption{
	{Value: "SLIM_MODERN_2CM", Label: "Slim Modern (2cm)"},
	{Value: "CLASSIC_BEVEL", Label: "Classic Bevel"},
	{Value: "GALLERY_DEEP", Label: "Gallery Deep"},
}

// Defaults applied to a freshly added item before the customer configures it.
const (
	DefaultSize       = "A4"
	DefaultFrameColor = "BLACK_MATTE"
	DefaultFrameModel = "SLIM_MODERN_2CM"
)

func Sizes() []Size { return sizes }

func FrameColors() []FrameOption { return frameColors }

func FrameModels() []FrameOption { return frameModels }

// BasePriceBani returns the snapshotted unit price for a size, or an error
// for unknown sizes. Prices are fixed per size; frames do not affect price.
func BasePriceBani(size string) (int, error) {
	for _, s := range sizes {
		if s.Value == size {
			return s.PriceBani, nil
		}
	}
	return 0, fmt.Errorf("unknown size: %q", size)
}

// ItemConfig is a customer-chosen item configuration to validate against the
// catalog before it is persisted.
type ItemConfig struct {
	Size       string
	FrameColor string
	FrameModel string
	Quantity   int
}

// ValidateItemConfig rejects configurations outside the fixed option space.
func ValidateItemConfig(cfg ItemConfig) error {
	if _, err := BasePriceBani(cfg.Size); err != nil {
		return err
	}
	if !hasOption(frameColors, cfg.FrameColor) {
		return fmt.Errorf("unknown frame color: %q", cfg.FrameColor)
	}
	if !hasOption(frameModels, cfg.FrameModel) {
		return fmt.Errorf("unknown frame model: %q", cfg.FrameModel)
	}
	if cfg.Quantity < 1 || cfg.Quantity > MaxQuantity {
		return fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	}
	return nil
}

func hasOption(options []FrameOption, value string) bool {
	for _, o := range options {
		if o.Value == strings.TrimSpace(value) {
			return true
		}
	}
	return false
}
