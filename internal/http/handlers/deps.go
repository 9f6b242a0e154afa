package handlers

import (
	"warungpos/internal/services"
	"warungpos/internal/store"
)

type Deps struct {
	AuthHandler        *AuthHandler
	ProductHandler     *ProductHandler
	CartHandler        *CartHandler
	CheckoutHandler    *CheckoutHandler
	TransactionHandler *TransactionHandler
	ReportHandler      *ReportHandler
}

func NewDeps(st store.Store, auth *services.AuthService, sessions *services.SessionManager) *Deps {
	prodSvc := services.NewProductService(st)
	checkoutSvc := services.NewCheckoutService(st)
	reportSvc := services.NewReportService()

	return &Deps{
		AuthHandler:        &AuthHandler{Auth: auth},
		ProductHandler:     &ProductHandler{Products: prodSvc, Sessions: sessions},
		CartHandler:        &CartHandler{Sessions: sessions},
		CheckoutHandler:    &CheckoutHandler{Checkout: checkoutSvc, Sessions: sessions},
		TransactionHandler: &TransactionHandler{Checkout: checkoutSvc, Sessions: sessions},
		ReportHandler:      &ReportHandler{Report: reportSvc, Sessions: sessions},
	}
}
