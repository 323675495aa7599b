package gormrepo

import (
	"errors"

	"github.com/jinzhu/gorm"
	"github.com/neuronlabs/uni-db"
	"github.com/neuronlabs/uni-db/gormconv"
)

// GORMRepository persists whole entities through gorm, preloading tagged
// relationship fields on reads. Database failures are converted into unidb
// error prototypes the handler's error manager understands.
type GORMRepository struct {
	db        *gorm.DB
	converter *gormconv.GORMConverter
}

func New(db *gorm.DB) (*GORMRepository, error) {
	gormRepo := &GORMRepository{}
	err := gormRepo.initialize(db)
	if err != nil {
		return nil, err
	}
	return gormRepo, nil
}

func (g *GORMRepository) Create(entity interface{}) *unidb.Error {
	if err := g.db.Create(entity).Error; err != nil {
		return g.convert(err)
	}
	return nil
}

func (g *GORMRepository) Get(id string, entity interface{}) *unidb.Error {
	db := g.db.Set("gorm:auto_preload", true)
	if err := db.Where("id = ?", id).First(entity).Error; err != nil {
		return g.convert(err)
	}
	return nil
}

func (g *GORMRepository) List(collection interface{}) *unidb.Error {
	db := g.db.Set("gorm:auto_preload", true)
	if err := db.Find(collection).Error; err != nil {
		return g.convert(err)
	}
	return nil
}

func (g *GORMRepository) Patch(id string, entity interface{}) *unidb.Error {
	if err := g.db.Save(entity).Error; err != nil {
		return g.convert(err)
	}
	return nil
}

func (g *GORMRepository) Delete(id string, entity interface{}) *unidb.Error {
	result := g.db.Where("id = ?", id).Delete(entity)
	if result.Error != nil {
		return g.convert(result.Error)
	}
	if result.RowsAffected == 0 {
		return unidb.ErrNoResult.New()
	}
	return nil
}

func (g *GORMRepository) initialize(db *gorm.DB) (err error) {
	if db == nil {
		err = errors.New("Nil pointer as an argument provided.")
		return
	}
	g.db = db

	g.converter, err = gormconv.New(db.Dialect().GetName())
	if err != nil {
		return err
	}
	return nil
}

func (g *GORMRepository) convert(err error) *unidb.Error {
	errObj := g.converter.Convert(err)
	errObj.Message = err.Error()
	return errObj
}
