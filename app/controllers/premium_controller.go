package controllers

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/HabitFox/app/models"
	"github.com/ManuelReschke/HabitFox/app/repository"
	"github.com/ManuelReschke/HabitFox/internal/pkg/database"
	"github.com/ManuelReschke/HabitFox/internal/pkg/entitlements"
	"github.com/ManuelReschke/HabitFox/internal/pkg/purchase"
	"github.com/ManuelReschke/HabitFox/internal/pkg/receiptarchive"
	"github.com/ManuelReschke/HabitFox/internal/pkg/session"
	"github.com/ManuelReschke/HabitFox/internal/pkg/usercontext"
)

// The purchase client keeps a configured app user id across requests, so the
// whole process shares one instance.
var (
	purchaseClientOnce sync.Once
	purchaseClient     *purchase.Client

	receiptArchiveOnce sync.Once
	receiptArchive     *receiptarchive.Client
)

func getPurchaseClient() *purchase.Client {
	purchaseClientOnce.Do(func() {
		purchaseClient = purchase.NewClientFromEnv()
	})
	return purchaseClient
}

func getReceiptArchive() *receiptarchive.Client {
	receiptArchiveOnce.Do(func() {
		cfg, err := receiptarchive.LoadConfig()
		if err != nil {
			log.Printf("receipt archive config invalid, archiving disabled: %v", err)
			return
		}
		if !cfg.IsEnabled() {
			return
		}
		client, err := receiptarchive.NewClient(cfg)
		if err != nil {
			log.Printf("receipt archive unavailable, archiving disabled: %v", err)
			return
		}
		receiptArchive = client
	})
	return receiptArchive
}

func getEntitlementResolver() *entitlements.Resolver {
	return entitlements.NewResolver(
		getPurchaseClient(),
		repository.GetGlobalFactory().GetEntitlementRepository(),
	)
}

// clientPlatform reads the platform the client reported for this request.
func clientPlatform(c *fiber.Ctx) purchase.Platform {
	p := c.Get("X-Client-Platform")
	if p == "" {
		p = c.FormValue("platform")
	}
	return purchase.ParsePlatform(p)
}

// HandlePremium shows the premium page with the resolved entitlement status
// and, when the purchase backend is reachable, the current offering.
func HandlePremium(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	status := getEntitlementResolver().Resolve(ctx, userCtx.UserID)

	var offering *purchase.Offering
	client := getPurchaseClient()
	if client.Available() {
		client.Configure(entitlements.AppUserID(userCtx.UserID))
		o, err := client.GetOfferings(ctx)
		if err != nil {
			log.Printf("offerings unavailable for user %d: %v", userCtx.UserID, err)
		} else {
			offering = o
		}
	}

	return renderPage(c, "pages/premium", fiber.Map{
		"Title":            "HabitFox Premium",
		"PremiumActive":    status.IsPremium,
		"PremiumExpiresAt": status.ExpiresAt,
		"Offering":         offering,
		"StoreAvailable":   client.Available(),
	})
}

// HandlePurchase executes a purchase for the selected product and reports the
// normalized outcome to the user.
func HandlePurchase(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	productID := strings.TrimSpace(c.FormValue("product_id"))
	if productID == "" {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No product selected"}).Redirect("/premium")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	client := getPurchaseClient()
	client.Configure(entitlements.AppUserID(userCtx.UserID))

	outcome, err := client.Purchase(ctx, productID, clientPlatform(c))
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Purchase could not be started"}).Redirect("/premium")
	}

	persistOutcome(ctx, userCtx.UserID, outcome)

	if !outcome.Success {
		return flash.WithError(c, fiber.Map{"type": "error", "message": outcome.Error}).Redirect("/premium")
	}

	activatePremium(ctx, c, userCtx.UserID)
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Welcome to Premium! Unlimited habits unlocked."}).Redirect("/premium")
}

// HandleRestore re-syncs past purchases, for users returning on a new device.
func HandleRestore(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
	defer cancel()

	client := getPurchaseClient()
	client.Configure(entitlements.AppUserID(userCtx.UserID))

	outcome, err := client.Restore(ctx, clientPlatform(c))
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Restore could not be started"}).Redirect("/premium")
	}

	persistOutcome(ctx, userCtx.UserID, outcome)

	if !outcome.Success {
		return flash.WithError(c, fiber.Map{"type": "error", "message": outcome.Error}).Redirect("/premium")
	}

	// Restore only helps if an entitlement actually came back.
	status := getEntitlementResolver().Resolve(ctx, userCtx.UserID)
	if !status.IsPremium {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No previous purchases found for this account"}).Redirect("/premium")
	}

	activatePremium(ctx, c, userCtx.UserID)
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Purchases restored. Premium is active again."}).Redirect("/premium")
}

// persistOutcome stores the receipt row and archives the raw payload. Both
// writes are advisory and never fail the request.
func persistOutcome(ctx context.Context, userID uint, outcome purchase.Outcome) {
	receipt := &models.PurchaseReceipt{
		UserID:         userID,
		Success:        outcome.Success,
		ProductID:      outcome.ProductID,
		TransactionID:  outcome.TransactionID,
		Platform:       string(outcome.Platform),
		ErrorMessage:   outcome.Error,
		RawPayloadJSON: string(outcome.Raw),
	}
	if err := repository.GetGlobalFactory().GetEntitlementRepository().RecordReceipt(receipt); err != nil {
		log.Printf("failed to persist purchase receipt for user %d: %v", userID, err)
	}

	if archive := getReceiptArchive(); archive != nil && len(outcome.Raw) > 0 {
		txn := outcome.TransactionID
		if txn == "" {
			txn = "attempt-" + time.Now().UTC().Format("20060102T150405")
		}
		if _, err := archive.ArchiveReceipt(ctx, userID, txn, outcome.Raw); err != nil {
			log.Printf("failed to archive receipt for user %d: %v", userID, err)
		}
	}
}

// activatePremium flips the stored plan, refreshes the entitlement mirror and
// the session copy used by the navbar.
func activatePremium(ctx context.Context, c *fiber.Ctx, userID uint) {
	db := database.GetDB()
	if us, err := models.GetOrCreateUserSettings(db, userID); err == nil && us != nil {
		us.Plan = string(entitlements.PlanPremium)
		if err := db.Save(us).Error; err != nil {
			log.Printf("failed to persist premium plan for user %d: %v", userID, err)
		}
	}

	client := getPurchaseClient()
	if client.Available() {
		client.Configure(entitlements.AppUserID(userID))
		if active, expiresAt, err := client.ActiveEntitlement(ctx, entitlements.EntitlementPremium); err == nil {
			repo := repository.GetGlobalFactory().GetEntitlementRepository()
			if werr := repo.Put(ctx, userID, active, expiresAt); werr != nil {
				log.Printf("entitlement mirror refresh for user %d discarded: %v", userID, werr)
			}
		}
	}

	_ = session.SetSessionValue(c, USER_PLAN, string(entitlements.PlanPremium))
}
