package models

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Nickname     *string   `db:"nickname" json:"nickname,omitempty"`
	FirstName    *string   `db:"first_name" json:"firstName,omitempty"`
	LastName     *string   `db:"last_name" json:"lastName,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// DisplayName is the nickname, else "first last", else the raw id.
func (u User) DisplayName() string {
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	first, last := deref(u.FirstName), deref(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return u.ID
}

type Account struct {
	UserID     string    `db:"user_id" json:"userId"`
	Experience int64     `db:"experience" json:"experience"`
	Loyalty    int64     `db:"loyalty" json:"loyalty"`
	Coins      int64     `db:"coins" json:"coins"`
	Gems       int64     `db:"gems" json:"gems"`
	Level      int       `db:"level" json:"level"`
	Rank       string    `db:"rank" json:"rank"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// Shop is a participating store and its per-visit reward configuration.
type Shop struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Address            string    `db:"address" json:"address"`
	ScanCode           string    `db:"scan_code" json:"-"`
	ExperiencePerVisit int64     `db:"experience_per_visit" json:"experiencePerVisit"`
	LoyaltyPerVisit    int64     `db:"loyalty_per_visit" json:"loyaltyPerVisit"`
	CoinsPerVisit      int64     `db:"coins_per_visit" json:"coinsPerVisit"`
	GemsPerVisit       int64     `db:"gems_per_visit" json:"gemsPerVisit"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
}

type Visit struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"userId"`
	StoreID          string    `db:"store_id" json:"storeId"`
	ExperienceEarned int64     `db:"experience_earned" json:"experienceEarned"`
	LoyaltyEarned    int64     `db:"loyalty_earned" json:"loyaltyEarned"`
	CoinsEarned      int64     `db:"coins_earned" json:"coinsEarned"`
	GemsEarned       int64     `db:"gems_earned" json:"gemsEarned"`
	LevelBefore      int       `db:"level_before" json:"levelBefore"`
	LevelAfter       int       `db:"level_after" json:"levelAfter"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

const (
	TransactionCheckin = "checkin"
	TransactionBonus   = "bonus"
	TransactionRedeem  = "redeem"
	TransactionLevelUp = "level_up"
)

// Transaction is a reward-granting event, separate from coin transfers.
type Transaction struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"userId"`
	StoreID          *string   `db:"store_id" json:"storeId,omitempty"`
	Type             string    `db:"type" json:"type"`
	Description      string    `db:"description" json:"description"`
	ExperienceEarned int64     `db:"experience_earned" json:"experienceEarned"`
	LoyaltyEarned    int64     `db:"loyalty_earned" json:"loyaltyEarned"`
	CoinsEarned      int64     `db:"coins_earned" json:"coinsEarned"`
	GemsEarned       int64     `db:"gems_earned" json:"gemsEarned"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

type Activity struct {
	Transaction
	StoreName *string `db:"store_name" json:"storeName,omitempty"`
}

const (
	TransferCompleted = "completed"
	TransferPending   = "pending"
	TransferCancelled = "cancelled"

	TransferTypeTransfer = "transfer"
	TransferTypeGift     = "gift"
	TransferTypeReward   = "reward"
)

type CoinTransfer struct {
	ID         string    `db:"id" json:"id"`
	FromUserID *string   `db:"from_user_id" json:"fromUserId"`
	ToUserID   string    `db:"to_user_id" json:"toUserId"`
	Amount     int64     `db:"amount" json:"amount"`
	Message    *string   `db:"message" json:"message,omitempty"`
	Status     string    `db:"status" json:"status"`
	Type       string    `db:"type" json:"type"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

type LedgerEntry struct {
	ID          string    `db:"id" json:"id"`
	TransferID  string    `db:"reference_id" json:"referenceId"`
	UserID      string    `db:"user_id" json:"userId"`
	Amount      int64     `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type AddressBookEntry struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"ownerId"`
	RecipientID string    `db:"recipient_id" json:"recipientId"`
	Nickname    string    `db:"nickname" json:"nickname"`
	IsFavorite  bool      `db:"is_favorite" json:"isFavorite"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Announcement struct {
	ID        string     `db:"id" json:"id"`
	StoreID   *string    `db:"store_id" json:"storeId,omitempty"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Priority  int        `db:"priority" json:"priority"`
	IsActive  bool       `db:"is_active" json:"isActive"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

const (
	NotificationLevelUp       = "level_up"
	NotificationCoinsReceived = "coins_received"
)

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Nft struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	Rarity      string    `db:"rarity" json:"rarity"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type UserNft struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	NftID     string    `db:"nft_id" json:"nftId"`
	Reason    string    `db:"reason" json:"reason"`
	AwardedAt time.Time `db:"awarded_at" json:"awardedAt"`
	Name      string    `db:"name" json:"name"`
	ImageURL  string    `db:"image_url" json:"imageUrl"`
	Rarity    string    `db:"rarity" json:"rarity"`
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
