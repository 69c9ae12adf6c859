package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vladislavdragonenkov/laundry-pos/internal/domain"
	"github.com/vladislavdragonenkov/laundry-pos/internal/gateway"
	"github.com/vladislavdragonenkov/laundry-pos/internal/service/pos"
)

// flexNumber принимает число или строку. Всё, что не разбирается, становится 0.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(domain.ParseNumeric(s))
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(domain.Coerce(v))
	return nil
}

type itemRequest struct {
	Name  string     `json:"name"`
	Qty   flexNumber `json:"qty"`
	Price flexNumber `json:"price"`
}

type orderRequest struct {
	ID           string        `json:"id"`
	CustomerName string        `json:"customerName"`
	Phone        string        `json:"phone"`
	Items        []itemRequest `json:"items"`
}

func (r orderRequest) draft() domain.OrderDraft {
	draft := domain.OrderDraft{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		Phone:        r.Phone,
	}
	for _, item := range r.Items {
		draft.AddItem(item.Name, float64(item.Qty), float64(item.Price))
	}
	return draft
}

// ItemView: позиция заказа в ответах API.
type ItemView struct {
	Name   string  `json:"name"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// OrderView: заказ в ответах API.
type OrderView struct {
	ID             string     `json:"id"`
	CustomerName   string     `json:"customerName"`
	Phone          string     `json:"phone,omitempty"`
	CreatedAt      string     `json:"createdAt"`
	Items          []ItemView `json:"items"`
	Total          float64    `json:"total"`
	TotalFormatted string     `json:"totalFormatted"`
}

// NewOrderView готовит заказ к отдаче клиенту.
func NewOrderView(order domain.Order) OrderView {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			Name:   item.Name,
			Qty:    item.Qty,
			Price:  item.Price,
			Amount: item.Amount(),
		})
	}
	return OrderView{
		ID:             order.ID,
		CustomerName:   order.CustomerName,
		Phone:          order.Phone,
		CreatedAt:      order.CreatedAtISO(),
		Items:          items,
		Total:          order.Total(),
		TotalFormatted: domain.FormatINR(order.Total()),
	}
}

type listingResponse struct {
	Orders     []OrderView `json:"orders"`
	Count      int         `json:"count"`
	GrandTotal float64     `json:"grandTotal"`
	Error      string      `json:"error,omitempty"`
}

func newListingResponse(listing pos.Listing) listingResponse {
	views := make([]OrderView, 0, len(listing.Orders))
	for _, order := range listing.Orders {
		views = append(views, NewOrderView(order))
	}
	return listingResponse{Orders: views, Count: listing.Count, GrandTotal: listing.GrandTotal}
}

type nextIDResponse struct {
	ID string `json:"id"`
}

type bulkDeleteResponse struct {
	Deleted   []string `json:"deleted"`
	Remaining []string `json:"remaining"`
	Error     string   `json:"error,omitempty"`
}

func newBulkDeleteResponse(report gateway.BulkDeleteReport) bulkDeleteResponse {
	resp := bulkDeleteResponse{Deleted: report.Deleted, Remaining: report.Remaining}
	if resp.Deleted == nil {
		resp.Deleted = []string{}
	}
	if resp.Remaining == nil {
		resp.Remaining = []string{}
	}
	if report.Err != nil {
		resp.Error = domain.ErrStoreUnavailable.Error()
	}
	return resp
}

// listOrders при сбое хранилища отдаёт 503 вместе с пустым списком.
func (s *Server) listOrders(c echo.Context) error {
	listing, err := s.orders.ListOrders(c.Request().Context())
	resp := newListingResponse(listing)
	if err != nil {
		status, message := statusFor(err)
		resp.Error = message
		return c.JSON(status, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) nextOrderID(c echo.Context) error {
	id, err := s.orders.NextOrderID(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nextIDResponse{ID: id})
}

func (s *Server) createOrder(c echo.Context) error {
	var req orderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order payload")
	}

	order, err := s.orders.CreateOrder(c.Request().Context(), req.draft())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, NewOrderView(order))
}

func (s *Server) getOrder(c echo.Context) error {
	order, err := s.orders.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewOrderView(order))
}

// deleteOrder отвечает 204 и для несуществующего номера.
func (s *Server) deleteOrder(c echo.Context) error {
	if err := s.orders.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// deleteAllOrders отдаёт отчёт и при частичном удалении: статус 503, уже удалённые не возвращаются.
func (s *Server) deleteAllOrders(c echo.Context) error {
	report, err := s.orders.DeleteAllOrders(c.Request().Context())
	resp := newBulkDeleteResponse(report)
	if err != nil {
		status, message := statusFor(err)
		resp.Error = message
		return c.JSON(status, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
