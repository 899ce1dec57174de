package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"star-broker/internal/content"
	"star-broker/internal/state"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var (
		credits  int64
		location string
		packets  int
		deal     *state.ActiveIntelDeal
	)
	s.store.View(func(st *state.SaveState) {
		credits = st.Player.Credits
		location = st.Player.CurrentLocationID
		for _, list := range st.IntelMarket {
			packets += len(list)
		}
		if st.ActiveDeal != nil {
			d := *st.ActiveDeal
			deal = &d
		}
	})

	writeJSON(w, map[string]interface{}{
		"day":           s.clock.CurrentDay(),
		"credits":       credits,
		"location":      location,
		"intel_packets": packets,
		"active_deal":   deal,
		"pricing_mode":  string(s.pricer.Mode()),
	})
}

// intelListing is one packet as shown to the player: live quote plus the
// rendered teaser.
type intelListing struct {
	ID              string  `json:"id"`
	OfferLocation   string  `json:"offer_location"`
	DealLocation    string  `json:"deal_location"`
	Commodity       string  `json:"commodity"`
	DiscountPercent float64 `json:"discount_percent"`
	DurationDays    int     `json:"duration_days"`
	Purchased       bool    `json:"purchased"`
	Price           int     `json:"price"`
	Teaser          string  `json:"teaser"`
}

func (s *Server) handleListIntel(w http.ResponseWriter, r *http.Request) {
	locFilter := r.URL.Query().Get("location")
	data := s.exchange.Data()
	if locFilter != "" {
		if _, ok := data.Locations[locFilter]; !ok {
			writeError(w, 404, "unknown location")
			return
		}
	}

	var packets []*state.IntelPacket
	s.store.View(func(st *state.SaveState) {
		for loc, list := range st.IntelMarket {
			if locFilter != "" && loc != locFilter {
				continue
			}
			for _, p := range list {
				packets = append(packets, p.Clone())
			}
		}
	})

	listings := make([]intelListing, 0, len(packets))
	for _, p := range packets {
		price := s.pricer.Quote(p)
		teaser := ""
		if tpl, ok := s.catalog.Get(p.MessageKey); ok {
			teaser = content.Format(tpl.Sample, content.Subst{
				LocationName:    data.LocationName(p.DealLocationID),
				CommodityName:   data.CommodityName(p.CommodityID),
				DiscountPercent: p.DiscountPercent,
				DurationDays:    p.DurationDays,
				Price:           price,
			})
		}
		listings = append(listings, intelListing{
			ID:              p.ID,
			OfferLocation:   p.OfferLocationID,
			DealLocation:    p.DealLocationID,
			Commodity:       p.CommodityID,
			DiscountPercent: p.DiscountPercent,
			DurationDays:    p.DurationDays,
			Purchased:       p.Purchased,
			Price:           price,
			Teaser:          teaser,
		})
	}
	writeJSON(w, listings)
}

// handleIntelQuote returns the current asking price for one packet. In
// flicker mode consecutive calls may differ; purchase verification accepts
// any price inside the band.
func (s *Server) handleIntelQuote(w http.ResponseWriter, r *http.Request) {
	packetID := r.URL.Query().Get("packet_id")
	locationID := r.URL.Query().Get("location")
	if packetID == "" || locationID == "" {
		writeError(w, 400, "packet_id and location are required")
		return
	}
	var packet *state.IntelPacket
	s.store.View(func(st *state.SaveState) {
		if p := st.FindPacket(locationID, packetID); p != nil {
			packet = p.Clone()
		}
	})
	if packet == nil {
		writeError(w, 404, "packet not found")
		return
	}
	writeJSON(w, map[string]interface{}{
		"packet_id": packet.ID,
		"price":     s.pricer.Quote(packet),
	})
}

func (s *Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PacketID   string `json:"packet_id"`
		LocationID string `json:"location_id"`
		Price      int    `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.PacketID == "" || req.LocationID == "" {
		writeError(w, 400, "packet_id and location_id are required")
		return
	}

	packet, err := s.deals.Purchase(req.PacketID, req.LocationID, req.Price)
	if err != nil {
		writeError(w, rejectionStatus(err), err.Error())
		return
	}
	s.flush()

	var deal *state.ActiveIntelDeal
	s.store.View(func(st *state.SaveState) {
		if st.ActiveDeal != nil {
			d := *st.ActiveDeal
			deal = &d
		}
	})
	writeJSON(w, map[string]interface{}{
		"packet": packet,
		"deal":   deal,
	})
}

func (s *Server) handleTradeQuote(w http.ResponseWriter, r *http.Request) {
	commodity := r.URL.Query().Get("commodity")
	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || qty <= 0 {
		writeError(w, 400, "quantity must be a positive integer")
		return
	}
	details, err := s.trades.QuoteSale(commodity, qty)
	if err != nil {
		writeError(w, tradeStatus(err), err.Error())
		return
	}
	writeJSON(w, details)
}

func (s *Server) handleTradeSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Commodity string `json:"commodity"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	details, err := s.trades.ExecuteSale(req.Commodity, req.Quantity)
	if err != nil {
		writeError(w, tradeStatus(err), err.Error())
		return
	}
	s.flush()
	writeJSON(w, details)
}

func (s *Server) handleTradeBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Commodity string `json:"commodity"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	cost, err := s.trades.ExecuteBuy(req.Commodity, req.Quantity)
	if err != nil {
		writeError(w, tradeStatus(err), err.Error())
		return
	}
	s.flush()
	writeJSON(w, map[string]int{"cost": cost})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.Days <= 0 || req.Days > 3650 {
		writeError(w, 400, "days must be in 1..3650")
		return
	}
	day := s.clock.Advance(req.Days)
	s.flush()
	writeJSON(w, map[string]int{"day": day})
}

func (s *Server) handleMarketPrices(w http.ResponseWriter, r *http.Request) {
	loc := r.URL.Query().Get("location")
	if loc == "" {
		s.store.View(func(st *state.SaveState) { loc = st.Player.CurrentLocationID })
	}
	prices := s.exchange.PricesAt(loc)
	if prices == nil {
		writeError(w, 404, "unknown location")
		return
	}
	writeJSON(w, prices)
}
