package domain

import "time"

// CartItem Model: one row per product in a user's cart. The locked
// columns are set together or not at all; once set they never change
// until the row itself is removed.
type CartItem struct {
	ID          uint       `gorm:"primaryKey"`                   // Primary key
	Username    string     `gorm:"uniqueIndex:idx_cart_member"`  // Owning user
	Category    string     `gorm:"uniqueIndex:idx_cart_member"`  // Product category
	Product     string     `gorm:"uniqueIndex:idx_cart_member"`  // Product name
	Quantity    int        `gorm:"not null;default:1"`           // Always >= 1 while the row exists
	LockedDate  *time.Time // Day the price was locked for, nil when unlocked
	LockedPrice *float64   // Price captured at lock time, nil when unlocked
}

// Locked reports whether the entry carries a locked price snapshot.
func (i *CartItem) Locked() bool {
	return i.LockedDate != nil && i.LockedPrice != nil
}
