package services

import (
	"fmt"

	"github.com/gabbymorgan/drivefair.api/models"
)

// PriceOrderItem computes the price of one order item: the menu item's base
// price plus the price deltas of every selected modification option.
// Modifications with no selection contribute nothing. Pure: callers persist
// the result on the OrderItem and roll it into the order subtotal.
func PriceOrderItem(menuItem *models.MenuItem, selections []models.ModificationSelection) (float64, error) {
	price := menuItem.Price

	modifications := make(map[uint]*models.Modification, len(menuItem.Modifications))
	for i := range menuItem.Modifications {
		modifications[menuItem.Modifications[i].ID] = &menuItem.Modifications[i]
	}

	for _, selection := range selections {
		modification, ok := modifications[selection.ModificationID]
		if !ok {
			return 0, ErrValidation(fmt.Sprintf("Modification %d does not exist on this menu item.", selection.ModificationID))
		}
		if modification.Type == models.SelectionSingle && len(selection.OptionIDs) > 1 {
			return 0, ErrValidation(fmt.Sprintf("Modification %q allows only one option.", modification.Name))
		}
		for _, optionID := range selection.OptionIDs {
			option, ok := modification.OptionByID(optionID)
			if !ok {
				return 0, ErrValidation(fmt.Sprintf("Option %d does not exist on modification %q.", optionID, modification.Name))
			}
			price += option.Price
		}
	}

	return price, nil
}
