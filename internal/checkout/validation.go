package checkout

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/campuskart/campuskart-backend/pkg/enums"
	pkgerrors "github.com/campuskart/campuskart-backend/pkg/errors"
	"github.com/campuskart/campuskart-backend/pkg/types"
)

func validateInput(input CheckoutInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout requires at least one item")
	}
	if strings.TrimSpace(input.Mobile) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact mobile required")
	}
	if err := validateAddress(input.ShippingAddress); err != nil {
		return err
	}
	for i, item := range input.Items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(addr types.Address) error {
	if strings.TrimSpace(addr.Building) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address: building required")
	}
	if strings.TrimSpace(addr.Zone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address: zone required")
	}
	if strings.TrimSpace(addr.PostalCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address: postal code required")
	}
	return nil
}

func validateItem(i int, item ItemInput) error {
	if item.SellerID == uuid.Nil {
		return itemErr(i, "seller id required")
	}
	if !item.Category.IsValid() {
		return itemErr(i, fmt.Sprintf("unknown category %q", item.Category))
	}
	if item.Quantity <= 0 {
		return itemErr(i, "quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return itemErr(i, "unit price cannot be negative")
	}

	if item.Category == enums.CategoryXerox {
		if item.PrintConfig == nil {
			return itemErr(i, "xerox item requires a print config")
		}
		if item.PrintConfig.Pages <= 0 || item.PrintConfig.Copies <= 0 {
			return itemErr(i, "print config pages and copies must be positive")
		}
		if item.ProductID != nil {
			return itemErr(i, "xerox item cannot reference a catalog product")
		}
		return nil
	}

	if item.ProductID == nil || *item.ProductID == uuid.Nil {
		return itemErr(i, "product id required")
	}
	if item.ProductName == nil || strings.TrimSpace(*item.ProductName) == "" {
		return itemErr(i, "product name required")
	}
	if item.PrintConfig != nil {
		return itemErr(i, "print config only valid for xerox items")
	}
	return nil
}

func itemErr(i int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: %s", i, msg))
}
