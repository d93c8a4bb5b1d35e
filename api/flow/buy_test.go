package flow

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/domain"
)

type buyFixture struct {
	*harness
	gold   *domain.Currency
	armory *domain.Shop
	sword  *domain.Product
}

func newBuyFixture(t *testing.T, balance string) *buyFixture {
	h := newHarness(t)
	f := &buyFixture{harness: h, gold: h.currency("Gold")}
	f.armory = h.shop("Armory", f.gold)
	f.sword = h.product(f.armory, "Sword", "10.00")
	if err := h.uc.CreateDiscountCode(context.Background(), "admin", f.armory.ID, "HALF", 50); err != nil {
		t.Fatal(err)
	}
	if _, err := h.uc.Give(context.Background(), "admin", "u1", f.gold.ID, decimal.RequireFromString(balance)); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *buyFixture) browse() {
	f.t.Helper()
	f.mustRun("u1", "buy")
	f.click("u1", "shop", f.armory.ID)
	f.click("u1", "product", f.sword.ID)
}

func TestBuyPlainProduct(t *testing.T) {
	f := newBuyFixture(t, "15.00")
	f.mustRun("u1", "buy")
	if !f.fake.lastOf("reply").msg.Ephemeral {
		t.Fatal("buy menu must be ephemeral")
	}
	f.click("u1", "shop", f.armory.ID)
	if !strings.Contains(f.text(), "Your balance: 15.00 Gold") {
		t.Fatalf("catalog does not show the balance: %q", f.text())
	}
	if !f.mustControl("submit").disabled {
		t.Fatal("buy must wait for a product")
	}
	f.click("u1", "product", f.sword.ID)
	f.click("u1", "submit")

	if got := f.fake.rendered().Content; !strings.Contains(got, "You bought **Sword**") || !strings.Contains(got, "You now own 1.") {
		t.Fatalf("receipt = %q", got)
	}
	if got := domain.FormatAmount(f.store.Accounts.Balance("u1", f.gold.ID)); got != "5.00" {
		t.Fatalf("balance = %s, want 5.00", got)
	}
	acc, _ := f.uc.FindAccount("u1")
	if acc.Inventory[f.sword.ID].Amount != 1 {
		t.Fatalf("inventory = %+v", acc.Inventory)
	}
}

func TestBuyDiscountCodes(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		balance string
		shown   bool
	}{
		{"known code", "HALF", "10.00", true},
		{"unknown code is ignored", "half", "5.00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBuyFixture(t, "15.00")
			f.browse()
			f.clickForm("u1", "discount", codeField, tt.code)
			if got := strings.Contains(f.text(), "~~10.00~~ 5.00"); got != tt.shown {
				t.Fatalf("discounted price shown = %v, want %v in %q", got, tt.shown, f.text())
			}
			f.click("u1", "submit")
			if got := domain.FormatAmount(f.store.Accounts.Balance("u1", f.gold.ID)); got != tt.balance {
				t.Fatalf("balance = %s, want %s", got, tt.balance)
			}
		})
	}
}

func TestBuyInsufficientFundsChangesNothing(t *testing.T) {
	f := newBuyFixture(t, "9.99")
	f.browse()
	f.click("u1", "submit")

	if got := f.fake.rendered().Content; !strings.Contains(got, "❌ you don't have enough money") {
		t.Fatalf("view = %q", got)
	}
	if got := domain.FormatAmount(f.store.Accounts.Balance("u1", f.gold.ID)); got != "9.99" {
		t.Fatalf("balance = %s", got)
	}
	acc, _ := f.uc.FindAccount("u1")
	if len(acc.Inventory) != 0 {
		t.Fatalf("inventory = %+v", acc.Inventory)
	}
}

func TestBuyReservedShop(t *testing.T) {
	f := newBuyFixture(t, "50")
	reserved := "r1"
	if _, err := f.uc.UpdateShop(context.Background(), "admin", f.armory.ID, domain.ShopPatch{ReservedTo: &reserved}); err != nil {
		t.Fatal(err)
	}
	f.browse()
	f.click("u1", "submit")
	if got := f.fake.rendered().Content; !strings.Contains(got, "reserved") {
		t.Fatalf("view = %q", got)
	}
	if got := domain.FormatAmount(f.store.Accounts.Balance("u1", f.gold.ID)); got != "50.00" {
		t.Fatalf("balance = %s", got)
	}
}

func TestBuyChangeShopClearsSelection(t *testing.T) {
	f := newBuyFixture(t, "15")
	f.browse()
	f.click("u1", "back")
	f.mustControl("shop")
	if _, ok := f.control("product"); ok {
		t.Fatal("product select must leave with the catalog")
	}
	f.click("u1", "shop", f.armory.ID)
	if !f.mustControl("submit").disabled {
		t.Fatal("product selection should have been cleared")
	}
}

func TestBuyShopListPages(t *testing.T) {
	f := newBuyFixture(t, "15")
	f.shop("Bakery", f.gold)
	f.shop("Cellar", f.gold)

	f.mustRun("u1", "buy")
	if got := f.mustControl("shop").options; len(got) != 2 {
		t.Fatalf("first page options = %v", got)
	}
	f.click("u1", "page-next")
	if got := f.mustControl("shop").options; len(got) != 1 {
		t.Fatalf("second page options = %v", got)
	}
	if !f.mustControl("page-next").disabled || f.mustControl("page-first").disabled {
		t.Fatal("pager bounds are wrong on the last page")
	}
	if !strings.Contains(f.text(), "Page 2/2") || !strings.Contains(f.text(), "Cellar") {
		t.Fatalf("second page = %q", f.text())
	}
}
