package service

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"smartstudy_backend/internals/features/commerce/orders/model"
)

/* =========================================================
   Payment gateway (midtrans snap)
========================================================= */

type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Gateway: nil berarti tanpa payment gateway (order langsung settle, mode dev).
type Gateway interface {
	CreateSnap(ctx context.Context, o *model.OrderModel, cust Customer, itemName string) (token, redirectURL string, err error)
	ServerKey() string
}

type MidtransGateway struct {
	client    snap.Client
	serverKey string
}

func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	g := &MidtransGateway{serverKey: serverKey}
	if useProduction {
		g.client.New(serverKey, midtrans.Production)
	} else {
		g.client.New(serverKey, midtrans.Sandbox)
	}
	return g
}

// NewGatewayFromEnv: nil kalau server key kosong.
func NewGatewayFromEnv(serverKey string, useProduction bool) Gateway {
	if strings.TrimSpace(serverKey) == "" {
		return nil
	}
	return NewMidtransGateway(serverKey, useProduction)
}

func (g *MidtransGateway) ServerKey() string { return g.serverKey }

// midtrans hanya menerima nominal bulat
func grossAmount(o *model.OrderModel) int64 {
	return o.Amount.Round(0).IntPart()
}

func (g *MidtransGateway) CreateSnap(_ context.Context, o *model.OrderModel, cust Customer, itemName string) (string, string, error) {
	gross := grossAmount(o)
	if gross <= 0 {
		return "", "", errors.New("invalid gross amount")
	}
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  o.OrderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.FirstName,
			LName: cust.LastName,
			Email: cust.Email,
			Phone: cust.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       o.OrderID,
				Price:    gross,
				Qty:      1,
				Name:     truncate(itemName, 50),
				Category: o.ItemType,
			},
		},
		EnabledPayments: enabledPayments(o.PaymentMode),
	}

	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}

func enabledPayments(mode string) []snap.SnapPaymentType {
	switch mode {
	case model.ModeCard:
		return []snap.SnapPaymentType{snap.PaymentTypeCreditCard}
	case model.ModeWallet:
		return []snap.SnapPaymentType{snap.PaymentTypeGopay, snap.PaymentTypeShopeepay}
	case model.ModeNetbanking:
		return []snap.SnapPaymentType{snap.PaymentTypeBankTransfer}
	}
	return nil
}

// Signature: sha512(order_id + status_code + gross_amount + server_key), hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(n Notification, serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) == 1
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
