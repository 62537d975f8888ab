package dao

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		// No Docker; the transactional tests are skipped.
		log.Printf("docker unavailable, skipping dao tests: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=points",
			"POSTGRES_PASSWORD=points",
			"POSTGRES_DB=points_test",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	dsn := fmt.Sprintf("host=localhost port=%s user=points password=points dbname=points_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	pool.MaxWait = 2 * time.Minute
	if err = pool.Retry(func() error {
		db, openErr := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
		if openErr != nil {
			return openErr
		}
		sqlDB, pingErr := db.DB()
		if pingErr != nil {
			return pingErr
		}
		if pingErr = sqlDB.Ping(); pingErr != nil {
			return pingErr
		}
		testDB = db

		return nil
	}); err != nil {
		log.Fatalf("could not connect to postgres container: %v", err)
	}

	if err = InitTables(testDB); err != nil {
		log.Fatalf("could not migrate tables: %v", err)
	}

	code := m.Run()

	_ = pool.Purge(resource)
	os.Exit(code)
}

func requireDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("docker unavailable")
	}

	return testDB
}

// resetTables truncates all state between tests.
func resetTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	err := db.Exec(`TRUNCATE members, point_items, master_icons, inventories, point_ledger, wishes, idempotency_keys RESTART IDENTITY CASCADE`).Error
	require.NoError(t, err)
}

func seedMember(t *testing.T, db *gorm.DB, loginID string, balance int) Member {
	t.Helper()
	member := Member{LoginID: loginID, Nickname: loginID, Level: "REGULAR"}
	require.NoError(t, db.Create(&member).Error)
	if balance != 0 {
		entry := PointLedger{MemberID: member.ID, Amount: balance, Reason: "ADMIN_ADJUST", Note: "seed"}
		require.NoError(t, db.Create(&entry).Error)
	}

	return member
}

func seedItem(t *testing.T, db *gorm.DB, name string, price, stock int, itemType string) PointItem {
	t.Helper()
	item := PointItem{Name: name, Price: price, Stock: stock, Type: itemType, ReqLevel: "GUEST", LimitMode: "NONE"}
	require.NoError(t, db.Create(&item).Error)

	return item
}

func dayWindow() (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(0, 0, 1)
}

func TestPurchase_DebitsAndDeliversAtomically(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 500)
	item := seedItem(t, db, "frame", 300, 2, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	record, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, buyer.ID, record.MemberID)
	assert.Equal(t, 1, record.Quantity)
	assert.Equal(t, "FRAME", record.Slot)

	balance, err := NewLedgerDAO(db).SumByMember(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, balance)

	var reloaded PointItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)
}

func TestPurchase_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "poor", 100)
	item := seedItem(t, db, "frame", 300, 2, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	_, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Stock was not taken and no inventory appeared.
	var reloaded PointItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)

	var count int64
	require.NoError(t, db.Model(&Inventory{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPurchase_OutOfStock(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 1000)
	item := seedItem(t, db, "rare frame", 100, 1, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	params := PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	}

	_, err := d.Purchase(context.Background(), params)
	require.NoError(t, err)

	_, err = d.Purchase(context.Background(), params)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestPurchase_UnlimitedStockNeverRunsOut(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 1000)
	item := seedItem(t, db, "sticker", 10, -1, "BASIC")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	params := PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	}

	for i := 0; i < 3; i++ {
		_, err := d.Purchase(context.Background(), params)
		require.NoError(t, err)
	}

	var reloaded PointItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, -1, reloaded.Stock)

	record, err := NewInventoryDAO(db).FindOwnedItem(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, record.Quantity)
}

func TestPurchase_OncePerAccount(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 1000)
	item := seedItem(t, db, "badge", 100, -1, "BASIC")
	require.NoError(t, db.Model(&PointItem{}).Where("id = ?", item.ID).
		UpdateColumn("limit_mode", "ONCE_PER_ACCOUNT").Error)

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	params := PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	}

	record, err := d.Purchase(context.Background(), params)
	require.NoError(t, err)

	_, err = d.Purchase(context.Background(), params)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	// Cancelling clears the ownership, so a re-buy goes through.
	_, err = d.CancelPurchase(context.Background(), buyer.ID, record.ID)
	require.NoError(t, err)

	_, err = d.Purchase(context.Background(), params)
	assert.NoError(t, err)
}

func TestPurchase_DailyLimit(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 10000)
	item := seedItem(t, db, "daily box", 100, -1, "RANDOM_POINT")
	require.NoError(t, db.Model(&PointItem{}).Where("id = ?", item.ID).
		Updates(map[string]any{"limit_mode": "PER_DAY", "daily_limit": 2}).Error)

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	params := PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	}

	for i := 0; i < 2; i++ {
		_, err := d.Purchase(context.Background(), params)
		require.NoError(t, err)
	}

	_, err := d.Purchase(context.Background(), params)
	assert.ErrorIs(t, err, ErrDailyLimitReached)
}

func TestPurchase_IdempotencyKeyRejectsRetry(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 1000)
	item := seedItem(t, db, "sticker", 100, -1, "BASIC")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	params := PurchaseParams{
		PayerID:        buyer.ID,
		RecipientID:    buyer.ID,
		ItemNo:         item.ID,
		Reason:         "PURCHASE",
		Source:         "PURCHASE",
		IdempotencyKey: "req-123",
		DayStart:       dayStart,
		DayEnd:         dayEnd,
	}

	_, err := d.Purchase(context.Background(), params)
	require.NoError(t, err)

	_, err = d.Purchase(context.Background(), params)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// Only one debit happened.
	balance, err := NewLedgerDAO(db).SumByMember(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 900, balance)
}

func TestGiftPurchase_DeliversToRecipient(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	giver := seedMember(t, db, "giver", 500)
	recipient := seedMember(t, db, "recipient", 0)
	item := seedItem(t, db, "frame", 300, 5, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	record, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     giver.ID,
		RecipientID: recipient.ID,
		ItemNo:      item.ID,
		Reason:      "GIFT_SENT",
		Source:      "GIFT",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, recipient.ID, record.MemberID)

	giverBalance, err := NewLedgerDAO(db).SumByMember(context.Background(), giver.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, giverBalance)

	// The recipient's balance is untouched; only a history marker lands.
	recipientBalance, err := NewLedgerDAO(db).SumByMember(context.Background(), recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, recipientBalance)

	entries, total, err := NewLedgerDAO(db).History(context.Background(), recipient.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "GIFT_RECEIVED", entries[0].Reason)
}

func TestCancelPurchase_RoundTrip(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 500)
	item := seedItem(t, db, "frame", 300, 2, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	record, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.NoError(t, err)

	refund, err := d.CancelPurchase(context.Background(), buyer.ID, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, refund)

	balance, err := NewLedgerDAO(db).SumByMember(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, balance)

	var reloaded PointItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)

	_, err = NewInventoryDAO(db).FindByID(context.Background(), record.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestCancelPurchase_OnlyPurchasesRefundable(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	member := seedMember(t, db, "member", 0)
	item := seedItem(t, db, "frame", 300, 2, "DECO_FRAME")

	d := NewExchangeDAO(db)

	granted, err := d.Grant(context.Background(), member.ID, &item.ID, nil)
	require.NoError(t, err)

	// A granted stack was never paid for; cancelling it must not credit
	// points or bump stock.
	_, err = d.CancelPurchase(context.Background(), member.ID, granted.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	balance, err := NewLedgerDAO(db).SumByMember(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)

	var reloaded PointItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 2, reloaded.Stock)

	// The same holds for a gifted stack on the recipient's side.
	giver := seedMember(t, db, "giver", 500)
	dayStart, dayEnd := dayWindow()
	gifted, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     giver.ID,
		RecipientID: member.ID,
		ItemNo:      item.ID,
		Reason:      "GIFT_SENT",
		Source:      "GIFT",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.NoError(t, err)

	_, err = d.CancelPurchase(context.Background(), member.ID, gifted.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelPurchase_RefundsPricePaid(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 500)
	item := seedItem(t, db, "frame", 300, 2, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	record, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.NoError(t, err)

	// The price goes up after the buy; the refund is what was charged.
	require.NoError(t, db.Model(&PointItem{}).Where("id = ?", item.ID).
		UpdateColumn("price", 1000).Error)

	refund, err := d.CancelPurchase(context.Background(), buyer.ID, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 300, refund)

	balance, err := NewLedgerDAO(db).SumByMember(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
}

func TestPurchase_IdempotencyKeyScopedPerMember(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	alice := seedMember(t, db, "alice", 1000)
	bob := seedMember(t, db, "bob", 1000)
	item := seedItem(t, db, "sticker", 100, -1, "BASIC")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	params := func(memberID uint) PurchaseParams {
		return PurchaseParams{
			PayerID:        memberID,
			RecipientID:    memberID,
			ItemNo:         item.ID,
			Reason:         "PURCHASE",
			Source:         "PURCHASE",
			IdempotencyKey: "req-777",
			DayStart:       dayStart,
			DayEnd:         dayEnd,
		}
	}

	_, err := d.Purchase(context.Background(), params(alice.ID))
	require.NoError(t, err)

	// Another member reusing the same key is a fresh request, not a
	// replay.
	_, err = d.Purchase(context.Background(), params(bob.ID))
	require.NoError(t, err)

	_, err = d.Purchase(context.Background(), params(bob.ID))
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestPurchase_LastUnitRace(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	alice := seedMember(t, db, "alice", 1000)
	bob := seedMember(t, db, "bob", 1000)
	item := seedItem(t, db, "last one", 100, 1, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, buyer := range []uint{alice.ID, bob.ID} {
		wg.Add(1)
		go func(i int, memberID uint) {
			defer wg.Done()
			_, errs[i] = d.Purchase(context.Background(), PurchaseParams{
				PayerID:     memberID,
				RecipientID: memberID,
				ItemNo:      item.ID,
				Reason:      "PURCHASE",
				Source:      "PURCHASE",
				DayStart:    dayStart,
				DayEnd:      dayEnd,
			})
		}(i, buyer)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrOutOfStock)
		}
	}
	assert.Equal(t, 1, winners)

	var reloaded PointItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Zero(t, reloaded.Stock)

	var count int64
	require.NoError(t, db.Model(&Inventory{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEquip_SwapsWithinSlot(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 1000)
	first := seedItem(t, db, "frame one", 100, -1, "DECO_FRAME")
	second := seedItem(t, db, "frame two", 100, -1, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()
	buy := func(itemNo uint) Inventory {
		record, err := d.Purchase(context.Background(), PurchaseParams{
			PayerID:     buyer.ID,
			RecipientID: buyer.ID,
			ItemNo:      itemNo,
			Reason:      "PURCHASE",
			Source:      "PURCHASE",
			DayStart:    dayStart,
			DayEnd:      dayEnd,
		})
		require.NoError(t, err)

		return record
	}

	recordOne := buy(first.ID)
	recordTwo := buy(second.ID)

	require.NoError(t, d.Equip(context.Background(), buyer.ID, recordOne.ID))
	require.NoError(t, d.Equip(context.Background(), buyer.ID, recordTwo.ID))

	equipped, err := NewInventoryDAO(db).FindEquipped(context.Background(), buyer.ID, "FRAME")
	require.NoError(t, err)
	assert.Equal(t, recordTwo.ID, equipped.ID)

	var reloadedOne Inventory
	require.NoError(t, db.First(&reloadedOne, recordOne.ID).Error)
	assert.False(t, reloadedOne.Equipped)
}

func TestDiscard_EquippedRejected(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	buyer := seedMember(t, db, "buyer", 1000)
	item := seedItem(t, db, "frame", 100, -1, "DECO_FRAME")

	d := NewExchangeDAO(db)
	dayStart, dayEnd := dayWindow()

	record, err := d.Purchase(context.Background(), PurchaseParams{
		PayerID:     buyer.ID,
		RecipientID: buyer.ID,
		ItemNo:      item.ID,
		Reason:      "PURCHASE",
		Source:      "PURCHASE",
		DayStart:    dayStart,
		DayEnd:      dayEnd,
	})
	require.NoError(t, err)
	require.NoError(t, d.Equip(context.Background(), buyer.ID, record.ID))

	err = d.Discard(context.Background(), buyer.ID, record.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, d.Unequip(context.Background(), buyer.ID, record.ID))
	require.NoError(t, d.Discard(context.Background(), buyer.ID, record.ID))
}

func TestAdjustPoints_CannotGoNegative(t *testing.T) {
	db := requireDB(t)
	resetTables(t, db)

	member := seedMember(t, db, "member", 100)

	d := NewExchangeDAO(db)

	balance, err := d.AdjustPoints(context.Background(), member.ID, -60, "penalty")
	require.NoError(t, err)
	assert.Equal(t, 40, balance)

	_, err = d.AdjustPoints(context.Background(), member.ID, -50, "too much")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}
