package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "barkeep/internal/log"
	"barkeep/internal/money"
	"barkeep/internal/purchase"
	"barkeep/models"
)

const purchaseRequestsPathPrefix = "/api/purchase-requests"

const maxInvoiceUploadBytes = 16 << 20

type purchaseItemRequest struct {
	ProductID     uint    `json:"product_id"`
	Quantity      float64 `json:"quantity"`
	OrderQuantity float64 `json:"order_quantity"`
	Supplier      string  `json:"supplier"`
}

type purchaseRequestPayload struct {
	Items []purchaseItemRequest `json:"items"`
}

type supplierTransitionPayload struct {
	Supplier string `json:"supplier"`
	Status   string `json:"status"`
}

type receivedQuantityPayload struct {
	Items []struct {
		ID               uint    `json:"id"`
		QuantityReceived float64 `json:"quantity_received"`
	} `json:"items"`
}

type purchaseItemResponse struct {
	ID               uint     `json:"id"`
	ProductID        *uint    `json:"product_id"`
	Code             string   `json:"code"`
	Description      string   `json:"description"`
	Quantity         float64  `json:"quantity"`
	Supplier         string   `json:"supplier"`
	SubCategory      string   `json:"sub_category"`
	CostPerUnit      float64  `json:"cost_per_unit"`
	OrderQuantity    float64  `json:"order_quantity"`
	QuantityReceived *float64 `json:"quantity_received"`
}

type purchaseRequestResponse struct {
	ID                    uint                              `json:"id"`
	OrderNumber           string                            `json:"order_number"`
	OrderedDate           time.Time                         `json:"ordered_date"`
	Status                string                            `json:"status"`
	OverallStatus         string                            `json:"overall_status"`
	Organisation          string                            `json:"organisation"`
	SupplierStatuses      map[string]string                 `json:"supplier_statuses"`
	SupplierInvoices      map[string]models.SupplierInvoice `json:"supplier_invoices"`
	SupplierReceivedDates map[string]string                 `json:"supplier_received_dates"`
	Items                 []purchaseItemResponse            `json:"items"`
	TotalCost             float64                           `json:"total_cost"`
	TotalDisplay          string                            `json:"total_display"`
	ReceivedTotalCost     float64                           `json:"received_total_cost"`
	CreatedAt             time.Time                         `json:"created_at"`
	UpdatedAt             time.Time                         `json:"updated_at"`
}

// PurchaseRequestResource handles purchase orders: creation with snapshot
// pricing, per-supplier status transitions, invoice capture, and goods
// receipt.
func PurchaseRequestResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	scope, ok := currentScope(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	segments := resourcePath(r, purchaseRequestsPathPrefix)
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodGet:
			listPurchaseRequests(w, r, scope)
		case http.MethodPost:
			createPurchaseRequest(w, r, scope)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	requestID, ok := parseID(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}

	if len(segments) > 1 {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		switch segments[1] {
		case "suppliers":
			transitionSupplierStatus(w, r, scope, requestID)
		case "invoice":
			uploadSupplierInvoice(w, r, scope, requestID)
		case "receive":
			recordReceivedQuantities(w, r, scope, requestID)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		showPurchaseRequest(w, r, scope, requestID)
	case http.MethodDelete:
		deletePurchaseRequest(w, r, scope, requestID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listPurchaseRequests(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var requests []models.PurchaseRequest
	query := scopedQuery(database.WithContext(ctx), scope).Preload("Items").Order("ordered_date desc")
	if err := query.Find(&requests).Error; err != nil {
		applog.Error(ctx, "failed to list purchase requests", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchase requests")
		return
	}

	responses := make([]purchaseRequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, projectPurchaseRequest(&requests[i], scope))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createPurchaseRequest(w http.ResponseWriter, r *http.Request, scope Scope) {
	ctx := r.Context()
	var payload purchaseRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "at least one item is required")
		return
	}

	items := make([]models.PurchaseItem, 0, len(payload.Items))
	for _, req := range payload.Items {
		if req.ProductID == 0 {
			writeJSONError(w, http.StatusBadRequest, "item product_id is required")
			return
		}
		orderQuantity := req.OrderQuantity
		if orderQuantity <= 0 {
			orderQuantity = req.Quantity
		}
		if orderQuantity <= 0 {
			writeJSONError(w, http.StatusBadRequest, "item order_quantity must be positive")
			return
		}

		var product models.Product
		err := scopedQuery(database.WithContext(ctx), scope).First(&product, req.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeJSONError(w, http.StatusBadRequest, "item references an unknown product")
				return
			}
			applog.Error(ctx, "failed to load product for purchase item", "error", err, "product_id", req.ProductID)
			writeJSONError(w, http.StatusInternalServerError, "unable to create purchase request")
			return
		}

		quantity := req.Quantity
		if quantity <= 0 {
			quantity = orderQuantity
		}
		productID := product.ID
		items = append(items, models.PurchaseItem{
			ProductID:     &productID,
			Code:          product.Code,
			Description:   product.Description,
			Quantity:      quantity,
			Supplier:      defaultString(req.Supplier, product.Supplier),
			SubCategory:   product.SubCategory,
			CostPerUnit:   product.CostPerUnit,
			OrderQuantity: orderQuantity,
		})
	}

	request := models.PurchaseRequest{
		OrderNumber:  purchase.NewOrderNumber(time.Now()),
		OrderedDate:  time.Now().UTC(),
		Status:       purchase.CreationStatus(scope.Role),
		Organisation: scope.Organisation,
		CreatedBy:    scope.UserID,
		Items:        items,
	}

	if err := database.WithContext(ctx).Create(&request).Error; err != nil {
		applog.Error(ctx, "failed to create purchase request", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create purchase request")
		return
	}

	applog.Info(ctx, "purchase request created",
		"order_number", request.OrderNumber,
		"status", request.Status,
		"items", len(request.Items))
	writeJSON(w, http.StatusCreated, projectPurchaseRequest(&request, scope))
}

func showPurchaseRequest(w http.ResponseWriter, r *http.Request, scope Scope, requestID uint) {
	request, ok := loadPurchaseRequest(w, r, scope, requestID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectPurchaseRequest(request, scope))
}

func deletePurchaseRequest(w http.ResponseWriter, r *http.Request, scope Scope, requestID uint) {
	if !requireRole(w, r, scope, models.RoleManager) {
		return
	}

	ctx := r.Context()
	request, ok := loadPurchaseRequest(w, r, scope, requestID)
	if !ok {
		return
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_request_id = ?", request.ID).
			Delete(&models.PurchaseItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(request).Error
	})
	if err != nil {
		applog.Error(ctx, "failed to delete purchase request", "error", err, "id", requestID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete purchase request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// transitionSupplierStatus moves one supplier's slice of the order through
// the fulfillment state machine. Role checks live in the transition rules,
// not here.
func transitionSupplierStatus(w http.ResponseWriter, r *http.Request, scope Scope, requestID uint) {
	ctx := r.Context()
	request, ok := loadPurchaseRequest(w, r, scope, requestID)
	if !ok {
		return
	}

	var payload supplierTransitionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	supplier := strings.TrimSpace(payload.Supplier)
	if supplier == "" {
		writeJSONError(w, http.StatusBadRequest, "supplier is required")
		return
	}

	current := request.StatusForSupplier(supplier)
	if err := purchase.Transition(current, payload.Status, scope.Role); err != nil {
		switch {
		case errors.Is(err, purchase.ErrRoleNotPermitted):
			writeJSONError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, purchase.ErrTransitionNotAllowed):
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeJSONError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	request.SetSupplierStatus(supplier, payload.Status)
	if payload.Status == purchase.StatusOrderReceived {
		request.SetSupplierReceivedDate(supplier, time.Now())
	}

	updates := map[string]any{
		"supplier_statuses":       request.SupplierStatuses,
		"supplier_received_dates": request.SupplierReceivedDates,
	}
	if err := database.WithContext(ctx).Model(request).Updates(updates).Error; err != nil {
		applog.Error(ctx, "failed to update supplier status", "error", err,
			"id", requestID, "supplier", supplier)
		writeJSONError(w, http.StatusInternalServerError, "unable to update supplier status")
		return
	}

	applog.Info(ctx, "supplier status updated",
		"order_number", request.OrderNumber,
		"supplier", supplier,
		"from", current,
		"to", payload.Status)
	writeJSON(w, http.StatusOK, projectPurchaseRequest(request, scope))
}

// uploadSupplierInvoice accepts a multipart PDF upload, pulls the invoice
// number and total out of its text, and records them against the supplier.
func uploadSupplierInvoice(w http.ResponseWriter, r *http.Request, scope Scope, requestID uint) {
	if !requireRole(w, r, scope, models.RolePurchaseManager, models.RoleManager) {
		return
	}

	ctx := r.Context()
	request, ok := loadPurchaseRequest(w, r, scope, requestID)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxInvoiceUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	supplier := strings.TrimSpace(r.FormValue("supplier"))
	if supplier == "" {
		writeJSONError(w, http.StatusBadRequest, "supplier is required")
		return
	}

	file, header, err := r.FormFile("invoice")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invoice file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxInvoiceUploadBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "unable to read invoice file")
		return
	}

	invoice, err := purchase.ParseInvoice(data)
	if err != nil {
		applog.Debug(ctx, "invoice parse failed", "error", err, "filename", header.Filename)
		writeJSONError(w, http.StatusUnprocessableEntity, "unable to extract invoice details from PDF")
		return
	}

	request.SetSupplierInvoice(supplier, invoice)
	err = database.WithContext(ctx).Model(request).
		Update("supplier_invoices", request.SupplierInvoices).Error
	if err != nil {
		applog.Error(ctx, "failed to record supplier invoice", "error", err,
			"id", requestID, "supplier", supplier)
		writeJSONError(w, http.StatusInternalServerError, "unable to record invoice")
		return
	}

	applog.Info(ctx, "supplier invoice recorded",
		"order_number", request.OrderNumber,
		"supplier", supplier,
		"invoice_number", invoice.Number)
	writeJSON(w, http.StatusOK, projectPurchaseRequest(request, scope))
}

func recordReceivedQuantities(w http.ResponseWriter, r *http.Request, scope Scope, requestID uint) {
	if !requireRole(w, r, scope, models.RolePurchaseManager, models.RoleManager) {
		return
	}

	ctx := r.Context()
	request, ok := loadPurchaseRequest(w, r, scope, requestID)
	if !ok {
		return
	}

	var payload receivedQuantityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	lines := make(map[uint]float64, len(payload.Items))
	for _, item := range payload.Items {
		if item.QuantityReceived < 0 {
			writeJSONError(w, http.StatusBadRequest, "quantity_received must not be negative")
			return
		}
		lines[item.ID] = item.QuantityReceived
	}

	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range request.Items {
			quantity, ok := lines[item.ID]
			if !ok {
				continue
			}
			err := tx.Model(&models.PurchaseItem{}).
				Where("id = ? AND purchase_request_id = ?", item.ID, request.ID).
				Update("quantity_received", quantity).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		applog.Error(ctx, "failed to record received quantities", "error", err, "id", requestID)
		writeJSONError(w, http.StatusInternalServerError, "unable to record received quantities")
		return
	}

	reloaded, ok := loadPurchaseRequest(w, r, scope, requestID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectPurchaseRequest(reloaded, scope))
}

func loadPurchaseRequest(w http.ResponseWriter, r *http.Request, scope Scope, requestID uint) (*models.PurchaseRequest, bool) {
	ctx := r.Context()
	var request models.PurchaseRequest
	err := scopedQuery(database.WithContext(ctx), scope).Preload("Items").First(&request, requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		applog.Error(ctx, "failed to load purchase request", "error", err, "id", requestID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load purchase request")
		return nil, false
	}
	return &request, true
}

func projectPurchaseRequest(request *models.PurchaseRequest, scope Scope) purchaseRequestResponse {
	items := make([]purchaseItemResponse, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, purchaseItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			Code:             item.Code,
			Description:      item.Description,
			Quantity:         item.Quantity,
			Supplier:         item.Supplier,
			SubCategory:      item.SubCategory,
			CostPerUnit:      item.CostPerUnit,
			OrderQuantity:    item.OrderQuantity,
			QuantityReceived: item.QuantityReceived,
		})
	}

	statuses := request.SupplierStatuses.Data()
	if statuses == nil {
		statuses = map[string]string{}
	}
	invoices := request.SupplierInvoices.Data()
	if invoices == nil {
		invoices = map[string]models.SupplierInvoice{}
	}
	receivedDates := request.SupplierReceivedDates.Data()
	if receivedDates == nil {
		receivedDates = map[string]string{}
	}

	total := request.TotalCost()
	return purchaseRequestResponse{
		ID:                    request.ID,
		OrderNumber:           request.OrderNumber,
		OrderedDate:           request.OrderedDate,
		Status:                request.Status,
		OverallStatus:         purchase.OverallStatus(request),
		Organisation:          request.Organisation,
		SupplierStatuses:      statuses,
		SupplierInvoices:      invoices,
		SupplierReceivedDates: receivedDates,
		Items:                 items,
		TotalCost:             total,
		TotalDisplay:          money.Format(total, scope.Currency),
		ReceivedTotalCost:     request.ReceivedTotalCost(),
		CreatedAt:             request.CreatedAt,
		UpdatedAt:             request.UpdatedAt,
	}
}
