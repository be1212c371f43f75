package api

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/metrics"
)

type routeRequest struct {
	ProductIDs []string `json:"product_ids"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Products int    `json:"products"`
	Aisles   int    `json:"aisles"`
}

func (s *Server) health(c *fiber.Ctx) error {
	stats, err := s.svc.Catalog.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(healthResponse{
		Status:   "ok",
		Provider: s.svc.Assistant.ProviderName(),
		Products: stats.Products,
		Aisles:   stats.Aisles,
	})
}

// query answers a typed utterance (JSON body) or a spoken one
// (multipart form with an "audio" file).
func (s *Server) query(c *fiber.Ctx) error {
	var (
		reply *domain.Reply
		err   error
	)
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		reply, err = s.queryAudio(c)
	} else {
		var req domain.QueryRequest
		if perr := c.BodyParser(&req); perr != nil {
			return badRequest(perr)
		}
		reply, err = s.svc.Assistant.Handle(c.UserContext(), req)
	}
	if err != nil {
		return err
	}
	metrics.ObserveReply(*reply)
	return c.JSON(reply)
}

func (s *Server) queryAudio(c *fiber.Ctx) (*domain.Reply, error) {
	fh, err := c.FormFile("audio")
	if err != nil {
		return nil, fmt.Errorf("%w: audio file is required", domain.ErrInvalidInput)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badRequest(err)
	}
	defer f.Close()

	audio, err := io.ReadAll(f)
	if err != nil {
		return nil, badRequest(err)
	}

	req := domain.QueryRequest{
		ContextProductIDs: splitIDs(c.FormValue("context_product_ids")),
	}
	if v := c.FormValue("route"); v != "" {
		req.WantRoute, _ = strconv.ParseBool(v)
	}
	return s.svc.Assistant.HandleAudio(c.UserContext(), audio, fh.Filename, req)
}

func (s *Server) search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return fmt.Errorf("%w: query parameter q is required", domain.ErrInvalidInput)
	}
	limit := c.QueryInt("n", s.opts.SearchLimit)
	minScore := s.opts.SearchMinScore
	if v := c.Query("min_score"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return badRequest(err)
		}
		minScore = f
	}

	results, err := s.svc.Catalog.Search(c.UserContext(), q, limit, minScore)
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.ScoredProduct{}
	}
	return c.JSON(fiber.Map{"query": q, "results": results})
}

func (s *Server) route(c *fiber.Ctx) error {
	var req routeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(err)
	}
	plan, err := s.svc.Routes.PlanRoute(c.UserContext(), req.ProductIDs)
	metrics.ObserveRoute(err)
	if err != nil {
		return err
	}
	return c.JSON(plan)
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	products, err := s.svc.Catalog.FindAll(c.UserContext())
	if err != nil {
		return err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return c.JSON(products)
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	p, err := s.svc.Catalog.FindByID(c.UserContext(), paramID(c))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

func (s *Server) createProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return badRequest(err)
	}
	saved, err := s.svc.Catalog.Create(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (s *Server) updateProduct(c *fiber.Ctx) error {
	var p domain.Product
	if err := c.BodyParser(&p); err != nil {
		return badRequest(err)
	}
	p.ID = paramID(c)
	saved, err := s.svc.Catalog.Update(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(saved)
}

func (s *Server) deleteProduct(c *fiber.Ctx) error {
	if err := s.svc.Catalog.Remove(c.UserContext(), paramID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listAisles(c *fiber.Ctx) error {
	aisles, err := s.svc.Catalog.Aisles(c.UserContext())
	if err != nil {
		return err
	}
	if aisles == nil {
		aisles = []domain.Aisle{}
	}
	return c.JSON(aisles)
}

func (s *Server) createAisle(c *fiber.Ctx) error {
	var a domain.Aisle
	if err := c.BodyParser(&a); err != nil {
		return badRequest(err)
	}
	saved, err := s.svc.Catalog.CreateAisle(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (s *Server) updateAisle(c *fiber.Ctx) error {
	var a domain.Aisle
	if err := c.BodyParser(&a); err != nil {
		return badRequest(err)
	}
	a.ID = paramID(c)
	saved, err := s.svc.Catalog.UpdateAisle(c.UserContext(), a)
	if err != nil {
		return err
	}
	return c.JSON(saved)
}

func (s *Server) deleteAisle(c *fiber.Ctx) error {
	if err := s.svc.Catalog.RemoveAisle(c.UserContext(), paramID(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getLayout(c *fiber.Ctx) error {
	layout, err := s.svc.Catalog.Layout(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(layout)
}

func (s *Server) updateLayout(c *fiber.Ctx) error {
	var layout domain.StoreLayout
	if err := c.BodyParser(&layout); err != nil {
		return badRequest(err)
	}
	if err := s.svc.Catalog.UpdateLayout(c.UserContext(), layout); err != nil {
		return err
	}
	return c.JSON(layout)
}

func (s *Server) stats(c *fiber.Ctx) error {
	stats, err := s.svc.Catalog.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

// reload rebuilds the catalog snapshot from storage.
func (s *Server) reload(c *fiber.Ctx) error {
	if err := s.svc.Catalog.Reload(c.UserContext()); err != nil {
		return err
	}
	metrics.CatalogReloadsTotal.Inc()
	return s.stats(c)
}

// paramID copies the :id route parameter out of the request buffer,
// which fasthttp reuses once the handler returns.
func paramID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
