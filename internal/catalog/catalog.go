// Package catalog holds the fixed purchase packages and the fixed credit
// amounts for ledger actions. Every price and amount in the system comes
// from here; callers never supply their own.
package catalog

import (
	"fmt"

	"github.com/verifico/verifico-backend/internal/models"
)

type PackageInfo struct {
	PriceInCents int64
	Credits      int
}

var packages = map[models.CreditPackage]PackageInfo{
	models.PackageBuy25Credits:  {PriceInCents: 399, Credits: 25},
	models.PackageBuy50Credits:  {PriceInCents: 799, Credits: 50},
	models.PackageBuy75Credits:  {PriceInCents: 999, Credits: 75},
	models.PackageBuy150Credits: {PriceInCents: 1499, Credits: 150},
}

// packageOrder keeps listings stable for the public packages endpoint.
var packageOrder = []models.CreditPackage{
	models.PackageBuy25Credits,
	models.PackageBuy50Credits,
	models.PackageBuy75Credits,
	models.PackageBuy150Credits,
}

// actionAmounts are the signed credit deltas for fixed-price actions.
// PURCHASE_CREDITS is deliberately absent: its amount varies by package.
var actionAmounts = map[models.TransactionType]int{
	models.TransactionCreatePost:           -20,
	models.TransactionBoostPost:            -50,
	models.TransactionCommentMarkedHelpful: 5,
}

func Package(pkg models.CreditPackage) (PackageInfo, error) {
	info, ok := packages[pkg]
	if !ok {
		return PackageInfo{}, fmt.Errorf("unknown credit package %q", pkg)
	}
	return info, nil
}

func PriceInCents(pkg models.CreditPackage) (int64, error) {
	info, err := Package(pkg)
	if err != nil {
		return 0, err
	}
	return info.PriceInCents, nil
}

func Credits(pkg models.CreditPackage) (int, error) {
	info, err := Package(pkg)
	if err != nil {
		return 0, err
	}
	return info.Credits, nil
}

// ActionAmount returns the fixed signed amount for a ledger action.
// Purchase amounts are not fixed and must come from the package catalog.
func ActionAmount(t models.TransactionType) (int, error) {
	if t == models.TransactionPurchaseCredits {
		return 0, fmt.Errorf("%s has no fixed amount, use the package catalog", t)
	}
	amount, ok := actionAmounts[t]
	if !ok {
		return 0, fmt.Errorf("unknown transaction type %q", t)
	}
	return amount, nil
}

func Listings() []models.PackageListing {
	listings := make([]models.PackageListing, 0, len(packageOrder))
	for _, pkg := range packageOrder {
		info := packages[pkg]
		listings = append(listings, models.PackageListing{
			Package:      pkg,
			PriceInCents: info.PriceInCents,
			Credits:      info.Credits,
		})
	}
	return listings
}
