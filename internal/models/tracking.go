package models

import (
	"time"

	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/validation"
)

// TrackingRecord is one shipment row from the tracking spreadsheet, stored at /tracking/{key}.
// Field order follows the spreadsheet columns.
type TrackingRecord struct {
	FechaEntrada      string    `json:"fecha_entrada"`
	NumeroPedido      string    `json:"numero_pedido"`
	OC                string    `json:"oc"`
	Estatus           string    `json:"estatus"`
	Cliente           string    `json:"cliente"`
	Vendedor          string    `json:"vendedor"`
	Destino           string    `json:"destino"`
	Referencia        string    `json:"referencia"`
	ProveedorOrigen   string    `json:"proveedor_origen"`
	SalesOrder        string    `json:"sales_order"`
	Transfer          string    `json:"transfer"`
	SalesInvoice      string    `json:"sales_invoice"`
	FechaFactura      string    `json:"fecha_factura"`
	ArriboAduana      string    `json:"arribo_aduana"`
	NumPedimento      string    `json:"num_pedimento"`
	Remision          string    `json:"remision"`
	Fletera           string    `json:"fletera"`
	Guia              string    `json:"guia"`
	Documentado       string    `json:"documentado"`
	EntregaCancun     string    `json:"entrega_cancun"`
	EntregaAproximada string    `json:"entrega_aproximada"`
	EntregaReal       string    `json:"entrega_real"`
	ImportedAt        time.Time `json:"imported_at"`
	LastUpdated       time.Time `json:"last_updated"`
}

// TrackingColumns is the number of positional spreadsheet columns a record maps.
const TrackingColumns = 22

// Fields returns pointers to the positional columns in spreadsheet order.
func (r *TrackingRecord) Fields() [TrackingColumns]*string {
	return [TrackingColumns]*string{
		&r.FechaEntrada, &r.NumeroPedido, &r.OC, &r.Estatus, &r.Cliente, &r.Vendedor,
		&r.Destino, &r.Referencia, &r.ProveedorOrigen, &r.SalesOrder, &r.Transfer,
		&r.SalesInvoice, &r.FechaFactura, &r.ArriboAduana, &r.NumPedimento, &r.Remision,
		&r.Fletera, &r.Guia, &r.Documentado, &r.EntregaCancun, &r.EntregaAproximada,
		&r.EntregaReal,
	}
}

func (r *TrackingRecord) Validate() error {
	if r.NumeroPedido == "" && r.OC == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tracking record needs numero_pedido or oc")
	}
	return nil
}

const ImportTypeTracking = "onedrive_excel_import"

// ImportLog is pushed under /import_logs after every import attempt.
type ImportLog struct {
	Type         string             `json:"type" validate:"required"`
	RecordsCount int                `json:"records_count" validate:"gte=0"`
	Timestamp    time.Time          `json:"timestamp"`
	Status       enums.ImportStatus `json:"status" validate:"required"`
	Error        string             `json:"error,omitempty"`
	FailedChunk  *int               `json:"failed_chunk,omitempty"`
	DurationMS   int64              `json:"duration_ms,omitempty"`
}

func (l *ImportLog) Validate() error {
	if err := validation.Struct(l); err != nil {
		return err
	}
	if !l.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"status": "is not a known import status"})
	}
	return nil
}
