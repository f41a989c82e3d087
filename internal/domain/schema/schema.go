// Package schema assembles the registry of every entity type the service exposes.
package schema

import (
	"github.com/erp/erpcore/internal/domain/catalog"
	"github.com/erp/erpcore/internal/domain/entity"
	"github.com/erp/erpcore/internal/domain/finance"
	"github.com/erp/erpcore/internal/domain/inventory"
	"github.com/erp/erpcore/internal/domain/partner"
	"github.com/erp/erpcore/internal/domain/planning"
	"github.com/erp/erpcore/internal/domain/trade"
)

// Descriptors returns all entity descriptors, referenced entities first
func Descriptors() []*entity.Descriptor {
	ds := []*entity.Descriptor{
		partner.VendorDescriptor(),
		partner.CustomerDescriptor(),
		partner.WarehouseDescriptor(),
		catalog.ProductDescriptor(),
		inventory.Descriptor(),
		trade.PurchaseOrderDescriptor(),
		trade.PurchaseOrderLineDescriptor(),
		trade.SalesOrderDescriptor(),
		trade.SalesOrderLineDescriptor(),
		trade.PurchaseRequisitionDescriptor(),
		trade.SupplierContractDescriptor(),
		finance.GLAccountDescriptor(),
		finance.CostCenterDescriptor(),
		finance.AccountsPayableDescriptor(),
		finance.AccountsReceivableDescriptor(),
		finance.JournalEntryDescriptor(),
		finance.JournalLineDescriptor(),
	}
	ds = append(ds, finance.LedgerDescriptors()...)
	return append(ds,
		planning.ForecastDescriptor(),
		planning.CalendarEventDescriptor(),
	)
}

// Default builds a registry holding every entity type
func Default() *entity.Registry {
	return entity.NewRegistry().MustRegister(Descriptors()...)
}
