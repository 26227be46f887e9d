package service

import (
	"errors"
	"math/rand/v2"

	"github.com/tulendi/cafe-directory/internal/audit"
	"github.com/tulendi/cafe-directory/internal/models"
	"github.com/tulendi/cafe-directory/internal/repository"
	"github.com/tulendi/cafe-directory/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrNoCafes        = errors.New("no cafes available")
	ErrCafeNotFound   = errors.New("cafe not found")
	ErrCafeNameExists = errors.New("cafe name already exists")
)

// CafeInput carries the fields of the add-cafe form.
type CafeInput struct {
	Name         string
	MapURL       string
	ImgURL       string
	Location     string
	Seats        string
	HasToilet    bool
	HasWifi      bool
	HasSockets   bool
	CanTakeCalls bool
	CoffeePrice  string
}

type CafeService struct {
	cafeRepo *repository.CafeRepository
	trail    *audit.Trail
}

func NewCafeService(cafeRepo *repository.CafeRepository, trail *audit.Trail) *CafeService {
	return &CafeService{
		cafeRepo: cafeRepo,
		trail:    trail,
	}
}

// ListAll returns the full directory; empty is not an error.
func (s *CafeService) ListAll() ([]models.Cafe, error) {
	cafes, err := s.cafeRepo.GetAllCafes()
	if err != nil {
		logger.Log.Error("Failed to list cafes",
			zap.Error(err),
		)
		return nil, err
	}
	return cafes, nil
}

// Random picks one cafe uniformly from the full directory. No ordering
// or persistence guarantee across calls.
func (s *CafeService) Random() (*models.Cafe, error) {
	cafes, err := s.cafeRepo.GetAllCafes()
	if err != nil {
		logger.Log.Error("Failed to load cafes for random pick",
			zap.Error(err),
		)
		return nil, err
	}
	if len(cafes) == 0 {
		return nil, ErrNoCafes
	}

	cafe := cafes[rand.IntN(len(cafes))]
	return &cafe, nil
}

// SearchByLocation filters by exact location match. An empty result is
// returned as-is; the caller decides how to report it.
func (s *CafeService) SearchByLocation(location string) ([]models.Cafe, error) {
	cafes, err := s.cafeRepo.GetCafesByLocation(location)
	if err != nil {
		logger.Log.Error("Failed to search cafes by location",
			zap.String("location", location),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Debug("Location search completed",
		zap.String("location", location),
		zap.Int("matches", len(cafes)),
	)

	return cafes, nil
}

func (s *CafeService) GetByID(id uint) (*models.Cafe, error) {
	cafe, err := s.cafeRepo.GetCafeByID(id)
	if err != nil {
		logger.Log.Error("Failed to get cafe",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if cafe == nil {
		return nil, ErrCafeNotFound
	}
	return cafe, nil
}

// Add creates a cafe authored by the acting admin.
func (s *CafeService) Add(input CafeInput, authorID uint) (*models.Cafe, error) {
	existing, err := s.cafeRepo.GetCafeByName(input.Name)
	if err != nil {
		logger.Log.Error("Failed to check cafe name existence",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}
	if existing != nil {
		logger.Log.Warn("Cafe name already exists",
			zap.String("name", input.Name),
		)
		return nil, ErrCafeNameExists
	}

	cafe := &models.Cafe{
		AuthorID:     &authorID,
		Name:         input.Name,
		MapURL:       input.MapURL,
		ImgURL:       input.ImgURL,
		Location:     input.Location,
		Seats:        input.Seats,
		HasToilet:    input.HasToilet,
		HasWifi:      input.HasWifi,
		HasSockets:   input.HasSockets,
		CanTakeCalls: input.CanTakeCalls,
		CoffeePrice:  input.CoffeePrice,
	}

	if err := s.cafeRepo.CreateCafe(cafe); err != nil {
		logger.Log.Error("Failed to create cafe",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.trail.Record(audit.Entry{
		Action:   audit.ActionCafeAdded,
		ActorID:  authorID,
		Target:   "cafe",
		TargetID: cafe.ID,
		Detail:   cafe.Name,
	}); err != nil {
		logger.Log.Error("Failed to audit cafe creation",
			zap.Uint("cafe_id", cafe.ID),
			zap.Error(err),
		)
	}

	logger.Log.Info("Cafe added",
		zap.Uint("cafe_id", cafe.ID),
		zap.String("name", cafe.Name),
		zap.Uint("author_id", authorID),
	)

	return cafe, nil
}

// UpdatePrice overwrites a cafe's coffee price.
func (s *CafeService) UpdatePrice(id uint, newPrice string, adminID uint) (*models.Cafe, error) {
	cafe, err := s.cafeRepo.GetCafeByID(id)
	if err != nil {
		logger.Log.Error("Failed to look up cafe for price update",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if cafe == nil {
		return nil, ErrCafeNotFound
	}

	if err := s.cafeRepo.UpdateCoffeePrice(id, newPrice); err != nil {
		logger.Log.Error("Failed to update coffee price",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	cafe.CoffeePrice = newPrice

	if err := s.trail.Record(audit.Entry{
		Action:   audit.ActionCafePriceSet,
		ActorID:  adminID,
		Target:   "cafe",
		TargetID: id,
		Detail:   newPrice,
	}); err != nil {
		logger.Log.Error("Failed to audit price update",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
	}

	logger.Log.Info("Coffee price updated",
		zap.Uint("cafe_id", id),
		zap.String("new_price", newPrice),
		zap.Uint("admin_id", adminID),
	)

	return cafe, nil
}

// Delete removes a cafe from the directory.
func (s *CafeService) Delete(id uint, adminID uint) error {
	cafe, err := s.cafeRepo.GetCafeByID(id)
	if err != nil {
		logger.Log.Error("Failed to look up cafe for deletion",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
		return err
	}
	if cafe == nil {
		logger.Log.Warn("Cafe to delete not found",
			zap.Uint("cafe_id", id),
		)
		return ErrCafeNotFound
	}

	if err := s.cafeRepo.DeleteCafe(id); err != nil {
		logger.Log.Error("Failed to delete cafe",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
		return err
	}

	if err := s.trail.Record(audit.Entry{
		Action:   audit.ActionCafeDeleted,
		ActorID:  adminID,
		Target:   "cafe",
		TargetID: id,
		Detail:   cafe.Name,
	}); err != nil {
		logger.Log.Error("Failed to audit cafe deletion",
			zap.Uint("cafe_id", id),
			zap.Error(err),
		)
	}

	logger.Log.Info("Cafe deleted",
		zap.Uint("cafe_id", id),
		zap.String("name", cafe.Name),
		zap.Uint("admin_id", adminID),
	)

	return nil
}
