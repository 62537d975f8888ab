package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyOwned      = errors.New("item already owned")
	ErrDailyLimitReached = errors.New("daily purchase limit reached")
	ErrDuplicateRequest  = errors.New("duplicate request")
)

const stockUnlimited = -1

// IdempotencyKey records a processed buy/gift request. The composite
// primary key turns a client retry into ErrDuplicateRequest instead of
// a double charge, while keys are scoped per member: two members
// picking the same key never collide.
type IdempotencyKey struct {
	Key      string `gorm:"primaryKey;size:64"`
	MemberID uint   `gorm:"primaryKey"`

	Operation string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// ExchangeDAO owns every multi-table mutation of the engine. Each method
// runs as one transaction: a failure at any step leaves no visible
// effect. Rows are locked item → member → inventory, always in that
// order.
type ExchangeDAO struct {
	db *gorm.DB
}

func NewExchangeDAO(db *gorm.DB) *ExchangeDAO {
	return &ExchangeDAO{
		db: db,
	}
}

// PurchaseParams drives Purchase for both buy (payer == recipient) and
// gift (payer pays, recipient receives).
type PurchaseParams struct {
	PayerID     uint
	RecipientID uint
	ItemNo      uint

	Reason string
	Source string
	Note   string

	// IdempotencyKey is optional; empty keeps at-most-once off.
	IdempotencyKey string

	// Day window for the PER_DAY limit, in the configured timezone.
	DayStart time.Time
	DayEnd   time.Time
}

func (d *ExchangeDAO) Purchase(ctx context.Context, p PurchaseParams) (Inventory, error) {
	var record Inventory

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.IdempotencyKey != "" {
			key := IdempotencyKey{Key: p.IdempotencyKey, MemberID: p.PayerID, Operation: p.Reason}
			if err := tx.Create(&key).Error; err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
					return ErrDuplicateRequest
				}
				return err
			}
		}

		var item PointItem
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, p.ItemNo).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		switch item.LimitMode {
		case "ONCE_PER_ACCOUNT":
			var owned int64
			err = tx.Model(&Inventory{}).
				Where("member_id = ? AND item_no = ?", p.RecipientID, item.ID).
				Count(&owned).Error
			if err != nil {
				return err
			}
			if owned > 0 {
				return ErrAlreadyOwned
			}
		case "PER_DAY":
			if item.DailyLimit > 0 {
				count, err := countPurchasesBetween(tx, p.PayerID, item.ID, p.DayStart, p.DayEnd)
				if err != nil {
					return err
				}
				if count >= item.DailyLimit {
					return ErrDailyLimitReached
				}
			}
		}

		if item.Stock != stockUnlimited {
			res := tx.Model(&PointItem{}).
				Where("id = ? AND stock > 0", item.ID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}
		}

		if err = debit(tx, p.PayerID, item.Price, p.Reason, p.Note, &item.ID); err != nil {
			return err
		}

		// A gift leaves a zero-amount marker in the recipient's history.
		if p.RecipientID != p.PayerID {
			if err = credit(tx, p.RecipientID, 0, "GIFT_RECEIVED", p.Note, &item.ID); err != nil {
				return err
			}
		}

		record, err = upsertItemStack(tx, p.RecipientID, item, p.Source)

		return err
	})
	if err != nil {
		return Inventory{}, err
	}

	return record, nil
}

// debit locks the payer's member row, re-checks the ledger sum and
// appends the negative entry. The lock is what serializes concurrent
// debits of the same account.
func debit(tx *gorm.DB, memberID uint, amount int, reason, note string, itemNo *uint) error {
	var member Member
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&member, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	balance, err := sumByMember(tx, memberID)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}

	entry := PointLedger{MemberID: memberID, Amount: -amount, Reason: reason, Note: note, ItemNo: itemNo}

	return tx.Create(&entry).Error
}

func credit(tx *gorm.DB, memberID uint, amount int, reason, note string, itemNo *uint) error {
	entry := PointLedger{MemberID: memberID, Amount: amount, Reason: reason, Note: note, ItemNo: itemNo}

	return tx.Create(&entry).Error
}

func upsertItemStack(tx *gorm.DB, memberID uint, item PointItem, source string) (Inventory, error) {
	var record Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND item_no = ?", memberID, item.ID).
		First(&record).Error
	switch {
	case err == nil:
		record.Quantity++
		if err = tx.Model(&record).UpdateColumn("quantity", record.Quantity).Error; err != nil {
			return Inventory{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = Inventory{
			MemberID: memberID,
			ItemNo:   &item.ID,
			Quantity: 1,
			Slot:     slotForItemType(item.Type),
			Source:   source,
		}
		if err = tx.Create(&record).Error; err != nil {
			return Inventory{}, err
		}
	default:
		return Inventory{}, err
	}

	return record, nil
}

func upsertIconStack(tx *gorm.DB, memberID, iconID uint, source string) (Inventory, error) {
	var record Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("member_id = ? AND icon_id = ?", memberID, iconID).
		First(&record).Error
	switch {
	case err == nil:
		record.Quantity++
		if err = tx.Model(&record).UpdateColumn("quantity", record.Quantity).Error; err != nil {
			return Inventory{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		record = Inventory{
			MemberID: memberID,
			IconID:   &iconID,
			Quantity: 1,
			Slot:     "ICON",
			Source:   source,
		}
		if err = tx.Create(&record).Error; err != nil {
			return Inventory{}, err
		}
	default:
		return Inventory{}, err
	}

	return record, nil
}

func slotForItemType(itemType string) string {
	switch itemType {
	case "DECO_BG":
		return "BG"
	case "DECO_FRAME":
		return "FRAME"
	case "DECO_NICK":
		return "NICK"
	case "DECO_ICON":
		return "ICON"
	default:
		return ""
	}
}

// Grant creates or increments a stack without touching the ledger.
// Exactly one of itemNo/iconID must be set; the caller validates that.
func (d *ExchangeDAO) Grant(ctx context.Context, memberID uint, itemNo, iconID *uint) (Inventory, error) {
	var record Inventory

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member Member
		if err := tx.First(&member, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		var err error
		if itemNo != nil {
			var item PointItem
			if err = tx.First(&item, *itemNo).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return err
			}
			record, err = upsertItemStack(tx, memberID, item, "ADMIN_GRANT")
			return err
		}

		var icon MasterIcon
		if err = tx.First(&icon, *iconID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIconNotFound
			}
			return err
		}
		record, err = upsertIconStack(tx, memberID, icon.ID, "ADMIN_GRANT")

		return err
	})
	if err != nil {
		return Inventory{}, err
	}

	return record, nil
}

// Recall removes a stack unconditionally. No refund; recall is distinct
// from cancel.
func (d *ExchangeDAO) Recall(ctx context.Context, inventoryNo uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Inventory{}, inventoryNo)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}

		return nil
	})
}

// lockOwnedRecord loads an inventory row FOR UPDATE and hides records of
// other members behind ErrRecordNotFound.
func lockOwnedRecord(tx *gorm.DB, memberID, inventoryNo uint) (Inventory, error) {
	var record Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, inventoryNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Inventory{}, ErrRecordNotFound
		}
		return Inventory{}, err
	}
	if record.MemberID != memberID {
		return Inventory{}, ErrRecordNotFound
	}

	return record, nil
}

func decrementStack(tx *gorm.DB, record Inventory) error {
	if record.Quantity <= 1 {
		return tx.Delete(&Inventory{}, record.ID).Error
	}

	return tx.Model(&Inventory{ID: record.ID}).UpdateColumn("quantity", record.Quantity-1).Error
}

// Consume burns one unit of an owned, unequipped stack.
func (d *ExchangeDAO) Consume(ctx context.Context, memberID, inventoryNo uint) (Inventory, error) {
	var record Inventory

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if record.Equipped {
			return ErrInvalidState
		}

		return decrementStack(tx, record)
	})
	if err != nil {
		return Inventory{}, err
	}

	record.Quantity--

	return record, nil
}

// ConsumeAndCredit burns one unit and credits points in the same
// transaction (point box, roulette).
func (d *ExchangeDAO) ConsumeAndCredit(ctx context.Context, memberID, inventoryNo uint, amount int, reason, note string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if record.Equipped {
			return ErrInvalidState
		}
		if err = decrementStack(tx, record); err != nil {
			return err
		}

		return credit(tx, memberID, amount, reason, note, record.ItemNo)
	})
}

// ConsumeForNickname burns one unit and applies the new nickname on the
// member row.
func (d *ExchangeDAO) ConsumeForNickname(ctx context.Context, memberID, inventoryNo uint, nickname string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if err = decrementStack(tx, record); err != nil {
			return err
		}

		return tx.Model(&Member{ID: memberID}).UpdateColumn("nickname", nickname).Error
	})
}

// ConsumeForHearts burns one unit and credits hearts on the member row.
func (d *ExchangeDAO) ConsumeForHearts(ctx context.Context, memberID, inventoryNo uint, hearts int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if err = decrementStack(tx, record); err != nil {
			return err
		}

		return tx.Model(&Member{ID: memberID}).
			UpdateColumn("hearts", gorm.Expr("hearts + ?", hearts)).Error
	})
}

// DrawGrant burns one gacha ticket and grants the drawn icon.
func (d *ExchangeDAO) DrawGrant(ctx context.Context, memberID, ticketNo, iconID uint) (Inventory, error) {
	var record Inventory

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := lockOwnedRecord(tx, memberID, ticketNo)
		if err != nil {
			return err
		}
		if err = decrementStack(tx, ticket); err != nil {
			return err
		}

		record, err = upsertIconStack(tx, memberID, iconID, "GACHA")

		return err
	})
	if err != nil {
		return Inventory{}, err
	}

	return record, nil
}

// CancelPurchase reverses a buy: stock back, points back at the price
// actually paid, stack decremented. Only unequipped, purchase-sourced
// item stacks qualify: granted and gifted stacks were never paid for by
// their holder, so refunding them would mint points. Returns the
// refunded amount.
func (d *ExchangeDAO) CancelPurchase(ctx context.Context, memberID, inventoryNo uint) (int, error) {
	var refund int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if record.Equipped || record.ItemNo == nil || record.Source != "PURCHASE" {
			return ErrInvalidState
		}

		var item PointItem
		if err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, *record.ItemNo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		if err = decrementStack(tx, record); err != nil {
			return err
		}

		if item.Stock != stockUnlimited {
			err = tx.Model(&PointItem{}).
				Where("id = ?", item.ID).
				UpdateColumn("stock", gorm.Expr("stock + 1")).Error
			if err != nil {
				return err
			}
		}

		// Refund what the member's latest purchase debit actually charged,
		// so a price edit between buy and cancel cannot mint or burn
		// points. The catalog price is only a fallback.
		refund = item.Price
		var paid PointLedger
		err = tx.Where("member_id = ? AND item_no = ? AND reason = ?", memberID, *record.ItemNo, "PURCHASE").
			Order("id DESC").First(&paid).Error
		switch {
		case err == nil:
			refund = -paid.Amount
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return credit(tx, memberID, refund, "REFUND", item.Name, record.ItemNo)
	})
	if err != nil {
		return 0, err
	}

	return refund, nil
}

// Discard drops one unit with no point or stock effect.
func (d *ExchangeDAO) Discard(ctx context.Context, memberID, inventoryNo uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if record.Equipped {
			return ErrInvalidState
		}

		return decrementStack(tx, record)
	})
}

// Equip marks a cosmetic stack equipped, atomically unequipping whatever
// occupied the slot.
func (d *ExchangeDAO) Equip(ctx context.Context, memberID, inventoryNo uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if record.Slot == "" {
			return ErrInvalidState
		}
		if record.Equipped {
			return ErrAlreadyEquipped
		}

		err = tx.Model(&Inventory{}).
			Where("member_id = ? AND slot = ? AND equipped", memberID, record.Slot).
			UpdateColumn("equipped", false).Error
		if err != nil {
			return err
		}

		return tx.Model(&Inventory{ID: record.ID}).UpdateColumn("equipped", true).Error
	})
}

func (d *ExchangeDAO) Unequip(ctx context.Context, memberID, inventoryNo uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := lockOwnedRecord(tx, memberID, inventoryNo)
		if err != nil {
			return err
		}
		if !record.Equipped {
			return ErrNotEquipped
		}

		return tx.Model(&Inventory{ID: record.ID}).UpdateColumn("equipped", false).Error
	})
}

// AdjustPoints appends an admin adjustment. Negative amounts re-check
// the balance under the member row lock, the same as any debit.
func (d *ExchangeDAO) AdjustPoints(ctx context.Context, memberID uint, amount int, note string) (int, error) {
	var balance int

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member Member
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&member, memberID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		balance, err = sumByMember(tx, memberID)
		if err != nil {
			return err
		}
		if balance+amount < 0 {
			return ErrInsufficientBalance
		}

		entry := PointLedger{MemberID: memberID, Amount: amount, Reason: "ADMIN_ADJUST", Note: note}
		if err = tx.Create(&entry).Error; err != nil {
			return err
		}
		balance += amount

		return nil
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}
