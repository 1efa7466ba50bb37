package engine

import (
	"time"

	"github.com/jfiorezelogos/lg-logistica-backend/internal/domain/transaction"
	"github.com/jfiorezelogos/lg-logistica-backend/internal/types"
)

// Line is one row of the fulfillment spreadsheet, in the exact column
// layout the ERP import expects. Every value is a string; money is
// formatted with a comma decimal separator.
type Line struct {
	OrderNumber    string `json:"Número pedido"`
	BuyerName      string `json:"Nome Comprador"`
	Date           string `json:"Data"`
	BuyerDoc       string `json:"CPF/CNPJ Comprador"`
	BuyerAddress   string `json:"Endereço Comprador"`
	BuyerDistrict  string `json:"Bairro Comprador"`
	BuyerNumber    string `json:"Número Comprador"`
	BuyerComp      string `json:"Complemento Comprador"`
	BuyerZip       string `json:"CEP Comprador"`
	BuyerCity      string `json:"Cidade Comprador"`
	BuyerState     string `json:"UF Comprador"`
	BuyerPhone     string `json:"Telefone Comprador"`
	BuyerMobile    string `json:"Celular Comprador"`
	BuyerEmail     string `json:"E-mail Comprador"`
	Product        string `json:"Produto"`
	SKU            string `json:"SKU"`
	Unit           string `json:"Un"`
	Quantity       string `json:"Quantidade"`
	UnitValue      string `json:"Valor Unitário"`
	TotalValue     string `json:"Valor Total"`
	OrderTotal     string `json:"Total Pedido"`
	ShippingValue  string `json:"Valor Frete Pedido"`
	DiscountValue  string `json:"Valor Desconto Pedido"`
	OtherExpenses  string `json:"Outras despesas"`
	DeliveryName   string `json:"Nome Entrega"`
	DeliveryAddr   string `json:"Endereço Entrega"`
	DeliveryNumber string `json:"Número Entrega"`
	DeliveryComp   string `json:"Complemento Entrega"`
	DeliveryCity   string `json:"Cidade Entrega"`
	DeliveryState  string `json:"UF Entrega"`
	DeliveryZip    string `json:"CEP Entrega"`
	DeliveryDist   string `json:"Bairro Entrega"`
	Carrier        string `json:"Transportadora"`
	Service        string `json:"Serviço"`
	FreightType    string `json:"Tipo Frete"`
	Notes          string `json:"Observações"`
	Installments   string `json:"Qtd Parcela"`
	ExpectedDate   string `json:"Data Prevista"`
	Seller         string `json:"Vendedor"`
	PaymentMethod  string `json:"Forma Pagamento"`
	PaymentID      string `json:"ID Forma Pagamento"`
	OrderDate      string `json:"Data Pedido"`
	TransactionID  string `json:"transaction_id"`
	SubscriptionID string `json:"subscription_id"`
	ProductID      string `json:"product_id"`
	Plan           string `json:"Plano Assinatura"`
	Coupon         string `json:"Cupom"`
	Periodicity    string `json:"periodicidade"`
	Period         string `json:"periodo"`
	Unavailable    string `json:"indisponivel"`
	BatchID        string `json:"ID Lote"`
	DedupID        string `json:"dedup_id"`
	Combo          string `json:"Combo,omitempty"`
}

const dateLayout = "02/01/2006"

// baseLine fills the buyer, delivery and order columns shared by every
// row materialized from one charge.
func baseLine(tx *transaction.Transaction, order PricedOrder, now time.Time, plan types.SubscriptionTier, subscriptionID, coupon string) Line {
	contact := tx.Contact
	orderDate := ""
	if !order.OrderedAt.IsZero() {
		orderDate = order.OrderedAt.Format(dateLayout)
	}
	return Line{
		BuyerName:     contact.Name,
		Date:          now.Format(dateLayout),
		OrderDate:     orderDate,
		BuyerDoc:      contact.Doc,
		BuyerAddress:  contact.Address,
		BuyerNumber:   contact.AddressNumber,
		BuyerComp:     contact.AddressComp,
		BuyerDistrict: contact.AddressDistrict,
		BuyerZip:      contact.AddressZipCode,
		BuyerCity:     contact.AddressCity,
		BuyerState:    contact.AddressState,
		BuyerPhone:    contact.PhoneNumber,
		BuyerMobile:   contact.PhoneNumber,
		BuyerEmail:    contact.Email,

		DeliveryName:   contact.Name,
		DeliveryAddr:   contact.Address,
		DeliveryNumber: contact.AddressNumber,
		DeliveryComp:   contact.AddressComp,
		DeliveryDist:   contact.AddressDistrict,
		DeliveryZip:    contact.AddressZipCode,
		DeliveryCity:   contact.AddressCity,
		DeliveryState:  contact.AddressState,

		Unit:           "UN",
		Quantity:       "1",
		SubscriptionID: subscriptionID,
		ProductID:      tx.Product.InternalID,
		Plan:           string(plan),
		Periodicity:    string(order.Periodicity),
		Coupon:         coupon,
		PaymentMethod:  order.PaymentMethod,
		TransactionID:  order.TransactionID,
	}
}
