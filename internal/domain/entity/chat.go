package entity

import "time"

// ConversationKey is the natural key of a conversation.
type ConversationKey struct {
	AssetID  string
	BuyerID  string
	SellerID string
}

type Conversation struct {
	ID        string    `json:"id"`
	AssetID   string    `json:"assetId"`
	BuyerID   string    `json:"buyerId"`
	SellerID  string    `json:"sellerId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.BuyerID == userID || c.SellerID == userID)
}

func (c *Conversation) Key() ConversationKey {
	return ConversationKey{AssetID: c.AssetID, BuyerID: c.BuyerID, SellerID: c.SellerID}
}
