package service

import (
	"assetbazaar/internal/domain/entity"
	"assetbazaar/pkg/errors"
)

// Action is a buyer-side interaction with someone else's listing.
type Action string

const (
	ActionPurchase     Action = "purchase"
	ActionMessage      Action = "message"
	ActionDueDiligence Action = "due_diligence"
)

var signInMessages = map[Action]string{
	ActionPurchase:     "Please sign in to purchase assets",
	ActionMessage:      "Please sign in to message sellers",
	ActionDueDiligence: "Please sign in to request due diligence",
}

var ownAssetMessages = map[Action]string{
	ActionPurchase:     "You cannot purchase your own asset",
	ActionMessage:      "You cannot message yourself",
	ActionDueDiligence: "You cannot perform due diligence on your own asset",
}

// CheckInteraction must pass before any write on behalf of a buyer.
// Signed-out callers get Unauthorized, sellers acting on their own listing
// get Forbidden.
func CheckInteraction(identity *entity.Identity, asset *entity.DigitalAsset, action Action) error {
	if identity == nil || identity.UserID == "" {
		return errors.Unauthorized(signInMessages[action], nil)
	}
	if identity.Is(asset.Seller.ID) {
		return errors.Forbidden(ownAssetMessages[action], nil)
	}
	return nil
}
