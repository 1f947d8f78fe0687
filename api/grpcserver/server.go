// Package grpcserver exposes the order gateway ingress. Requests are mapped
// to commands and pushed onto the inbound queue; acceptance here means
// queued, not matched. Execution outcomes arrive on the report stream.
package grpcserver

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"tyr/domain/orderbook"
	"tyr/engine"
	"tyr/protocol"
	"tyr/service"
)

type Server struct {
	dispatcher *service.Dispatcher
	registry   *engine.CentralBook
	log        zerolog.Logger
}

func NewServer(d *service.Dispatcher, reg *engine.CentralBook, log zerolog.Logger) *Server {
	return &Server{
		dispatcher: d,
		registry:   reg,
		log:        log.With().Str("component", "grpc").Logger(),
	}
}

var _ protocol.OrderGatewayServer = (*Server)(nil)

func (s *Server) PlaceOrder(ctx context.Context, req *protocol.PlaceOrderRequest) (*protocol.PlaceOrderResponse, error) {
	if req.ClientOrderID == "" {
		return &protocol.PlaceOrderResponse{Reason: "missing client order id"}, nil
	}
	if !s.registry.Registered(req.Symbol) {
		return &protocol.PlaceOrderResponse{Reason: "unknown symbol"}, nil
	}

	s.dispatcher.Push(orderbook.Command{
		Type:  orderbook.CmdNew,
		Order: toOrder(req),
	})
	s.log.Debug().
		Str("clord_id", req.ClientOrderID).
		Str("symbol", req.Symbol).
		Msg("order queued")
	return &protocol.PlaceOrderResponse{Accepted: true}, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *protocol.CancelOrderRequest) (*protocol.CancelOrderResponse, error) {
	if req.OrigClientID == "" {
		return &protocol.CancelOrderResponse{Reason: "missing original client order id"}, nil
	}
	if !s.registry.Registered(req.Symbol) {
		return &protocol.CancelOrderResponse{Reason: "unknown symbol"}, nil
	}

	s.dispatcher.Push(orderbook.Command{
		Type: orderbook.CmdCancel,
		Order: orderbook.Order{
			ClientID: req.ClientOrderID,
			Symbol:   req.Symbol,
			Owner:    req.Owner,
			Target:   req.Target,
		},
		OrigClientID: req.OrigClientID,
	})
	return &protocol.CancelOrderResponse{Accepted: true}, nil
}

func (s *Server) Snapshot(ctx context.Context, req *protocol.SnapshotRequest) (*protocol.SnapshotResponse, error) {
	var mu sync.Mutex
	resp := &protocol.SnapshotResponse{}
	s.registry.EachOrder(func(o orderbook.Order) {
		if req.Symbol != "" && o.Symbol != req.Symbol {
			return
		}
		mu.Lock()
		resp.Orders = append(resp.Orders, protocol.OrderEntry{
			ClientOrderID: o.ClientID,
			Symbol:        o.Symbol,
			Side:          wireSide(o.Side),
			Price:         o.Price,
			Open:          o.Open,
			Executed:      o.Executed,
			Owner:         o.Owner,
		})
		mu.Unlock()
	})
	return resp, nil
}

func toOrder(req *protocol.PlaceOrderRequest) orderbook.Order {
	return orderbook.Order{
		ClientID: req.ClientOrderID,
		Symbol:   req.Symbol,
		Owner:    req.Owner,
		Target:   req.Target,
		Side:     toSide(req.Side),
		Type:     toType(req.Type),
		Price:    req.Price,
		Quantity: req.Quantity,
		Open:     req.Quantity,
	}
}

func toSide(s int32) orderbook.Side {
	if s == protocol.SideSell {
		return orderbook.Sell
	}
	return orderbook.Buy
}

func wireSide(s orderbook.Side) int32 {
	if s == orderbook.Sell {
		return protocol.SideSell
	}
	return protocol.SideBuy
}

func toType(t int32) orderbook.OrderType {
	switch t {
	case protocol.TypeMarket:
		return orderbook.Market
	case protocol.TypeIOC:
		return orderbook.IOC
	default:
		return orderbook.Limit
	}
}
