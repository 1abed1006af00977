package repository

import (
	"strconv"
	"time"

	"assetbazaar/internal/domain/entity"
	"assetbazaar/internal/domain/query"
)

// ToDigitalAsset maps a raw asset row and its seller profile row into the
// listing view model. It never fails: absent fields take their zero value,
// except optional financials which stay nil. The seller's email is never
// copied into a listing.
func ToDigitalAsset(asset, seller query.Record) entity.DigitalAsset {
	a := entity.DigitalAsset{
		ID:             str(asset, "id"),
		Title:          str(asset, "title"),
		Description:    str(asset, "description"),
		Category:       entity.Category(str(asset, "category")),
		Price:          num(asset, "price"),
		MonthlyRevenue: optNum(asset, "monthly_revenue"),
		MonthlyProfit:  optNum(asset, "monthly_profit"),
		TrafficStats: entity.TrafficStats{
			MonthlyVisitors: integer(asset, "monthly_visitors"),
			PageViews:       integer(asset, "page_views"),
		},
		CreatedAt: timestamp(asset, "created_at"),
		Status:    entity.AssetStatus(str(asset, "status")),
	}

	if seller != nil {
		a.Seller = ToUser(seller, false)
	}
	if a.Seller.ID == "" {
		a.Seller.ID = str(asset, "seller_id")
	}
	return a
}

// ToUser maps a profile row. The email is only kept when the caller is
// looking at their own profile.
func ToUser(rec query.Record, exposeEmail bool) entity.User {
	u := entity.User{
		ID:       str(rec, "id"),
		Name:     str(rec, "name"),
		Avatar:   str(rec, "avatar_url"),
		Rating:   num(rec, "rating"),
		Verified: boolean(rec, "verified"),
		Role:     str(rec, "role"),
		JoinedAt: timestamp(rec, "created_at"),
	}
	if exposeEmail {
		u.Email = str(rec, "email")
	}
	return u
}

func ToConversation(rec query.Record) *entity.Conversation {
	return &entity.Conversation{
		ID:        str(rec, "id"),
		AssetID:   str(rec, "asset_id"),
		BuyerID:   str(rec, "buyer_id"),
		SellerID:  str(rec, "seller_id"),
		CreatedAt: timestamp(rec, "created_at"),
	}
}

func ToMessage(rec query.Record) *entity.Message {
	return &entity.Message{
		ID:             str(rec, "id"),
		ConversationID: str(rec, "conversation_id"),
		SenderID:       str(rec, "sender_id"),
		Content:        str(rec, "content"),
		Read:           boolean(rec, "read"),
		CreatedAt:      timestamp(rec, "created_at"),
	}
}

func ToTransaction(rec query.Record) *entity.Transaction {
	return &entity.Transaction{
		ID:        str(rec, "id"),
		AssetID:   str(rec, "asset_id"),
		BuyerID:   str(rec, "buyer_id"),
		SellerID:  str(rec, "seller_id"),
		Amount:    num(rec, "amount"),
		Status:    entity.TransactionStatus(str(rec, "status")),
		CreatedAt: timestamp(rec, "created_at"),
		UpdatedAt: timestamp(rec, "updated_at"),
	}
}

func ToDueDiligenceRequest(rec query.Record) *entity.DueDiligenceRequest {
	return &entity.DueDiligenceRequest{
		ID:        str(rec, "id"),
		AssetID:   str(rec, "asset_id"),
		BuyerID:   str(rec, "buyer_id"),
		Status:    str(rec, "status"),
		CreatedAt: timestamp(rec, "created_at"),
	}
}

func ToVerificationItem(rec query.Record) entity.VerificationItem {
	item := entity.VerificationItem{
		ID:          str(rec, "id"),
		RequestID:   str(rec, "request_id"),
		Type:        entity.VerificationType(str(rec, "type")),
		Title:       str(rec, "title"),
		Description: str(rec, "description"),
		Status:      entity.VerificationStatus(str(rec, "status")),
		Notes:       str(rec, "notes"),
		CreatedAt:   timestamp(rec, "created_at"),
	}
	if updated := timestamp(rec, "updated_at"); !updated.IsZero() {
		item.UpdatedAt = &updated
	}
	return item
}

func str(rec query.Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func boolean(rec query.Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func num(rec query.Record, key string) float64 {
	if f := optNum(rec, key); f != nil {
		return *f
	}
	return 0
}

func optNum(rec query.Record, key string) *float64 {
	var f float64
	switch v := rec[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

func integer(rec query.Record, key string) int64 {
	switch v := rec[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

func timestamp(rec query.Record, key string) time.Time {
	switch v := rec[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
