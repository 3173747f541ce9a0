package service

import (
	"testing"
	"time"

	"github.com/YairAcuna3/kaufbuch-sub001/internal/apperr"
	"github.com/YairAcuna3/kaufbuch-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Record{},
		&models.BalanceAdjustment{},
		&models.Debt{},
	))
	return db
}

func newUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := models.User{Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func newWallet(t *testing.T, db *gorm.DB, userID uint, name string, isDefault bool) *models.Wallet {
	t.Helper()
	w := models.Wallet{UserID: userID, Name: name, IsDefault: isDefault}
	require.NoError(t, db.Create(&w).Error)
	return &w
}

func addRecord(t *testing.T, db *gorm.DB, userID, walletID uint, priceCent int64, isGift bool) {
	t.Helper()
	r := models.Record{
		UserID: userID, WalletID: walletID, Title: "r",
		PriceCent: priceCent, IsGift: isGift, OccurredAt: time.Now(),
	}
	require.NoError(t, db.Create(&r).Error)
}

func addAdjustment(t *testing.T, db *gorm.DB, userID, walletID uint, amountCent int64) {
	t.Helper()
	a := models.BalanceAdjustment{UserID: userID, WalletID: walletID, AmountCent: amountCent}
	require.NoError(t, db.Create(&a).Error)
}

func addDebt(t *testing.T, db *gorm.DB, userID, walletID uint, amountCent int64, doubt, wasPay bool) *models.Debt {
	t.Helper()
	d := models.Debt{
		UserID: userID, WalletID: walletID, ToWho: "someone",
		AmountCent: amountCent, Doubt: doubt, WasPay: wasPay,
	}
	require.NoError(t, db.Create(&d).Error)
	return &d
}

func adjustmentCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.BalanceAdjustment{}).Count(&n).Error)
	return n
}

// ---------- balance calculator ----------

func TestBalanceCombinesThreeSources(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	w := newWallet(t, db, u.ID, "Main", true)

	addRecord(t, db, u.ID, w.ID, 10000, false)     // +100.00 income
	addRecord(t, db, u.ID, w.ID, -2500, false)     // -25.00 expense
	addRecord(t, db, u.ID, w.ID, -99999, true)     // gift, ignored
	addAdjustment(t, db, u.ID, w.ID, 500)          // +5.00
	addAdjustment(t, db, u.ID, w.ID, -300)         // -3.00
	addDebt(t, db, u.ID, w.ID, 5000, true, true)   // I owed, paid: -50.00
	addDebt(t, db, u.ID, w.ID, 2000, false, true)  // collected: +20.00
	addDebt(t, db, u.ID, w.ID, 77777, true, false) // unsettled, ignored

	bal, err := s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000-2500+500-300-5000+2000), bal)
}

func TestBalanceEmptyWalletIsZero(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	w := newWallet(t, db, u.ID, "Main", true)

	bal, err := s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Zero(t, bal)
}

func TestBalanceScopedToOwner(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	aw := newWallet(t, db, alice.ID, "Main", true)

	// rows of another user never count, even with a forged wallet id
	addAdjustment(t, db, bob.ID, aw.ID, 100000)

	bal, err := s.Balance(alice.ID, aw.ID)
	require.NoError(t, err)
	assert.Zero(t, bal)

	// a foreign wallet looks exactly like a missing one
	_, err = s.Balance(bob.ID, aw.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDebtSettlementSymmetry(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	w := newWallet(t, db, u.ID, "Main", true)

	d := addDebt(t, db, u.ID, w.ID, 5000, true, false)

	bal, err := s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Zero(t, bal, "unsettled debt has no balance effect")

	require.NoError(t, db.Model(d).Update("was_pay", true).Error)
	bal, err = s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), bal)

	require.NoError(t, db.Model(d).Update("was_pay", false).Error)
	bal, err = s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Zero(t, bal, "unsettling restores the previous balance")
}

// ---------- lifecycle: create / update ----------

func TestCreateWalletValidation(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	newWallet(t, db, u.ID, "Main", true)

	_, err := s.Create(u.ID, "   ", "", nil)
	assert.True(t, apperr.Is(err, apperr.Validation), "blank name")

	_, err = s.Create(u.ID, "Main", "", nil)
	assert.True(t, apperr.Is(err, apperr.Conflict), "duplicate name")

	missing := uint(9999)
	_, err = s.Create(u.ID, "Savings", "", &missing)
	assert.True(t, apperr.Is(err, apperr.NotFound), "missing parent")

	frozen := newWallet(t, db, u.ID, "Frozen", false)
	require.NoError(t, db.Model(frozen).Update("is_frozen", true).Error)
	_, err = s.Create(u.ID, "Savings", "", &frozen.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound), "frozen parent")

	w, err := s.Create(u.ID, "Savings", "rainy day", nil)
	require.NoError(t, err)
	assert.False(t, w.IsDefault)
	assert.False(t, w.IsFrozen)
	assert.Nil(t, w.ParentID)
}

func TestUpdateWalletParent(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	a := newWallet(t, db, u.ID, "A", false)
	b := newWallet(t, db, u.ID, "B", false)

	// self-parent rejected
	_, err := s.Update(u.ID, a.ID, WalletUpdate{SetParent: true, ParentID: &a.ID})
	assert.True(t, apperr.Is(err, apperr.Validation))

	// A under B is fine
	w, err := s.Update(u.ID, a.ID, WalletUpdate{SetParent: true, ParentID: &b.ID})
	require.NoError(t, err)
	require.NotNil(t, w.ParentID)
	assert.Equal(t, b.ID, *w.ParentID)

	// B under A would close the loop A -> B -> A
	_, err = s.Update(u.ID, b.ID, WalletUpdate{SetParent: true, ParentID: &a.ID})
	assert.True(t, apperr.Is(err, apperr.Validation), "two-step cycle rejected")

	// explicit null clears the parent
	w, err = s.Update(u.ID, a.ID, WalletUpdate{SetParent: true})
	require.NoError(t, err)
	assert.Nil(t, w.ParentID)

	// renaming the default wallet is permitted
	name := "Haupt"
	w, err = s.Update(u.ID, main.ID, WalletUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Haupt", w.Name)
	assert.True(t, w.IsDefault)

	// duplicate name rejected
	dup := "B"
	_, err = s.Update(u.ID, a.ID, WalletUpdate{Name: &dup})
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestUpdateWalletDeepCycle(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	a := newWallet(t, db, u.ID, "A", false)
	b := newWallet(t, db, u.ID, "B", false)
	c := newWallet(t, db, u.ID, "C", false)

	_, err := s.Update(u.ID, b.ID, WalletUpdate{SetParent: true, ParentID: &a.ID})
	require.NoError(t, err)
	_, err = s.Update(u.ID, c.ID, WalletUpdate{SetParent: true, ParentID: &b.ID})
	require.NoError(t, err)

	// A -> B -> C, so C may not become A's parent
	_, err = s.Update(u.ID, a.ID, WalletUpdate{SetParent: true, ParentID: &c.ID})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

// ---------- lifecycle: delete ----------

func TestDeleteWallet(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	w := newWallet(t, db, u.ID, "Savings", false)

	err := s.Delete(u.ID, main.ID)
	assert.True(t, apperr.Is(err, apperr.Protected), "default wallet protected")

	addRecord(t, db, u.ID, w.ID, 100, false)
	err = s.Delete(u.ID, w.ID)
	assert.True(t, apperr.Is(err, apperr.NotEmpty), "referenced wallet protected")

	// references intact after the failed delete
	var n int64
	require.NoError(t, db.Model(&models.Record{}).Where("wallet_id = ?", w.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, db.Where("wallet_id = ?", w.ID).Delete(&models.Record{}).Error)
	require.NoError(t, s.Delete(u.ID, w.ID))

	err = db.First(&models.Wallet{}, w.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteWalletOrphansChildren(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	parent := newWallet(t, db, u.ID, "Parent", false)
	child := newWallet(t, db, u.ID, "Child", false)
	_, err := s.Update(u.ID, child.ID, WalletUpdate{SetParent: true, ParentID: &parent.ID})
	require.NoError(t, err)

	require.NoError(t, s.Delete(u.ID, parent.ID))

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, child.ID).Error)
	assert.Nil(t, reloaded.ParentID)
}

// ---------- lifecycle: freeze / unfreeze ----------

func TestFreezeZeroBalance(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	newWallet(t, db, u.ID, "Main", true)
	parent := newWallet(t, db, u.ID, "Parent", false)
	w := newWallet(t, db, u.ID, "Savings", false)
	_, err := s.Update(u.ID, w.ID, WalletUpdate{SetParent: true, ParentID: &parent.ID})
	require.NoError(t, err)

	frozen, err := s.Freeze(u.ID, w.ID, nil)
	require.NoError(t, err)
	assert.True(t, frozen.IsFrozen)
	assert.Nil(t, frozen.ParentID, "freezing detaches from the hierarchy")
	assert.Zero(t, adjustmentCount(t, db), "zero balance freeze writes no rows")
}

func TestFreezeNonzeroWithoutTarget(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	newWallet(t, db, u.ID, "Main", true)
	w := newWallet(t, db, u.ID, "Savings", false)
	addAdjustment(t, db, u.ID, w.ID, 7000)

	_, err := s.Freeze(u.ID, w.ID, nil)
	require.Error(t, err)
	e := apperr.AsError(err)
	require.NotNil(t, e)
	assert.Equal(t, apperr.Validation, e.Kind)
	assert.Equal(t, int64(7000), e.Details["balance_cent"], "failure reports the exact balance")
	assert.Equal(t, "70.00", e.Details["balance"])

	var reloaded models.Wallet
	require.NoError(t, db.First(&reloaded, w.ID).Error)
	assert.False(t, reloaded.IsFrozen, "no partial state")
	assert.Equal(t, int64(1), adjustmentCount(t, db), "no adjustment written")
}

func TestFreezeEvacuation(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	w := newWallet(t, db, u.ID, "Savings", false)
	addAdjustment(t, db, u.ID, main.ID, 1000)
	addAdjustment(t, db, u.ID, w.ID, 7000)

	frozen, err := s.Freeze(u.ID, w.ID, &main.ID)
	require.NoError(t, err)
	assert.True(t, frozen.IsFrozen)
	assert.Nil(t, frozen.ParentID)

	bal, err := s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Zero(t, bal, "source drained")

	bal, err = s.Balance(u.ID, main.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), bal, "target gained exactly the evacuated balance")

	var pair []models.BalanceAdjustment
	require.NoError(t, db.Where("reason LIKE ?", "Frozen:%").Order("amount_cent ASC").Find(&pair).Error)
	require.Len(t, pair, 2)
	assert.Equal(t, int64(-7000), pair[0].AmountCent)
	assert.Equal(t, w.ID, pair[0].WalletID)
	assert.Contains(t, pair[0].Reason, "Main")
	assert.Equal(t, int64(7000), pair[1].AmountCent)
	assert.Equal(t, main.ID, pair[1].WalletID)
	assert.Contains(t, pair[1].Reason, "Savings")
}

func TestFreezeNegativeBalanceEvacuation(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	w := newWallet(t, db, u.ID, "Overdrawn", false)
	addRecord(t, db, u.ID, w.ID, -4200, false)

	_, err := s.Freeze(u.ID, w.ID, &main.ID)
	require.NoError(t, err)

	bal, err := s.Balance(u.ID, w.ID)
	require.NoError(t, err)
	assert.Zero(t, bal)

	bal, err = s.Balance(u.ID, main.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-4200), bal, "a debt balance moves too")
}

func TestFreezeRejections(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	w := newWallet(t, db, u.ID, "Savings", false)
	other := newWallet(t, db, u.ID, "Other", false)
	addAdjustment(t, db, u.ID, main.ID, 12345)

	_, err := s.Freeze(u.ID, main.ID, nil)
	assert.True(t, apperr.Is(err, apperr.Protected), "default wallet never freezes")

	_, err = s.Freeze(u.ID, 9999, nil)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	addAdjustment(t, db, u.ID, w.ID, 100)
	_, err = s.Freeze(u.ID, w.ID, &w.ID)
	assert.True(t, apperr.Is(err, apperr.Validation), "target must differ")

	require.NoError(t, db.Model(other).Update("is_frozen", true).Error)
	_, err = s.Freeze(u.ID, w.ID, &other.ID)
	assert.True(t, apperr.Is(err, apperr.Frozen), "frozen target rejected")

	_, err = s.Freeze(u.ID, other.ID, nil)
	assert.True(t, apperr.Is(err, apperr.AlreadyFrozen))
}

func TestUnfreeze(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	newWallet(t, db, u.ID, "Main", true)
	parent := newWallet(t, db, u.ID, "Parent", false)
	w := newWallet(t, db, u.ID, "Savings", false)
	_, err := s.Update(u.ID, w.ID, WalletUpdate{SetParent: true, ParentID: &parent.ID})
	require.NoError(t, err)

	_, err = s.Unfreeze(u.ID, w.ID)
	assert.True(t, apperr.Is(err, apperr.NotFrozen))

	_, err = s.Freeze(u.ID, w.ID, nil)
	require.NoError(t, err)

	thawed, err := s.Unfreeze(u.ID, w.ID)
	require.NoError(t, err)
	assert.False(t, thawed.IsFrozen)
	assert.Nil(t, thawed.ParentID, "prior parent is not restored")
}

// ---------- transfer engine ----------

func TestTransferMovesBalance(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	a := newWallet(t, db, u.ID, "A", true)
	b := newWallet(t, db, u.ID, "B", false)
	addAdjustment(t, db, u.ID, a.ID, 10000)

	fromAdj, toAdj, err := s.Transfer(u.ID, a.ID, b.ID, 3000)
	require.NoError(t, err)
	assert.Equal(t, int64(-3000), fromAdj.AmountCent)
	assert.Equal(t, "Transferred to B", fromAdj.Reason)
	assert.Equal(t, int64(3000), toAdj.AmountCent)
	assert.Equal(t, "Transferred from A", toAdj.Reason)

	balA, err := s.Balance(u.ID, a.ID)
	require.NoError(t, err)
	balB, err := s.Balance(u.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), balA)
	assert.Equal(t, int64(3000), balB)
	assert.Equal(t, int64(10000), balA+balB, "total conserved")
}

func TestTransferValidation(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")
	a := newWallet(t, db, u.ID, "A", true)
	b := newWallet(t, db, u.ID, "B", false)
	frozen := newWallet(t, db, u.ID, "F", false)
	require.NoError(t, db.Model(frozen).Update("is_frozen", true).Error)
	foreign := newWallet(t, db, bob.ID, "Foreign", true)

	cases := []struct {
		name   string
		from   uint
		to     uint
		amount int64
		kind   apperr.Kind
	}{
		{"zero amount", a.ID, b.ID, 0, apperr.Validation},
		{"negative amount", a.ID, b.ID, -100, apperr.Validation},
		{"same wallet", a.ID, a.ID, 100, apperr.Validation},
		{"missing source", 9999, b.ID, 100, apperr.NotFound},
		{"missing destination", a.ID, 9999, 100, apperr.NotFound},
		{"foreign wallet", a.ID, foreign.ID, 100, apperr.NotFound},
		{"frozen source", frozen.ID, b.ID, 100, apperr.Frozen},
		{"frozen destination", a.ID, frozen.ID, 100, apperr.Frozen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.Transfer(u.ID, tc.from, tc.to, tc.amount)
			assert.True(t, apperr.Is(err, tc.kind), "got %v", err)
		})
	}

	assert.Zero(t, adjustmentCount(t, db), "failed transfers leave no rows")
}

// ---------- write-target resolution ----------

func TestResolveWriteTarget(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	frozen := newWallet(t, db, u.ID, "Frozen", false)
	require.NoError(t, db.Model(frozen).Update("is_frozen", true).Error)

	w, err := s.ResolveWriteTarget(u.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, main.ID, w.ID, "nil falls back to the default wallet")

	_, err = s.ResolveWriteTarget(u.ID, &frozen.ID)
	assert.True(t, apperr.Is(err, apperr.Frozen))

	missing := uint(9999)
	_, err = s.ResolveWriteTarget(u.ID, &missing)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

// ---------- hierarchy / listing ----------

func TestListWallets(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	savings := newWallet(t, db, u.ID, "Savings", false)
	pocket := newWallet(t, db, u.ID, "Pocket", false)
	_, err := s.Update(u.ID, pocket.ID, WalletUpdate{SetParent: true, ParentID: &savings.ID})
	require.NoError(t, err)

	addAdjustment(t, db, u.ID, pocket.ID, 1500)
	addRecord(t, db, u.ID, main.ID, 2000, false)
	addDebt(t, db, u.ID, main.ID, 300, false, true)

	iced := newWallet(t, db, u.ID, "Iced", false)
	_, err = s.Freeze(u.ID, iced.ID, nil)
	require.NoError(t, err)

	roots, err := s.List(u.ID, false)
	require.NoError(t, err)
	require.Len(t, roots, 2, "frozen wallet hidden by default")

	assert.Equal(t, "Main", roots[0].Wallet.Name, "default wallet first")
	assert.Equal(t, int64(2300), roots[0].BalanceCent)
	assert.Equal(t, int64(1), roots[0].Counts.Records)
	assert.Equal(t, int64(1), roots[0].Counts.Debts)

	assert.Equal(t, "Savings", roots[1].Wallet.Name)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "Pocket", roots[1].Children[0].Wallet.Name)
	assert.Equal(t, int64(1500), roots[1].Children[0].BalanceCent)

	roots, err = s.List(u.ID, true)
	require.NoError(t, err)
	assert.Len(t, roots, 3, "frozen wallet listed on request")
}

// ---------- end-to-end scenario ----------

func TestMainSavingsScenario(t *testing.T) {
	db := setupDB(t)
	s := NewWalletService(db)
	u := newUser(t, db, "alice")
	main := newWallet(t, db, u.ID, "Main", true)
	savings := newWallet(t, db, u.ID, "Savings", false)

	addAdjustment(t, db, u.ID, savings.ID, 10000)
	bal, err := s.Balance(u.ID, savings.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), bal)

	_, _, err = s.Transfer(u.ID, savings.ID, main.ID, 3000)
	require.NoError(t, err)

	bal, err = s.Balance(u.ID, savings.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7000), bal)
	bal, err = s.Balance(u.ID, main.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3000), bal)

	_, err = s.Freeze(u.ID, savings.ID, nil)
	require.Error(t, err)
	e := apperr.AsError(err)
	require.NotNil(t, e)
	require.Equal(t, int64(7000), e.Details["balance_cent"])

	_, err = s.Freeze(u.ID, savings.ID, &main.ID)
	require.NoError(t, err)

	bal, err = s.Balance(u.ID, savings.ID)
	require.NoError(t, err)
	require.Zero(t, bal)
	bal, err = s.Balance(u.ID, main.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10000), bal)
}
