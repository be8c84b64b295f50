//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"techdeals/seeder-service/internal/app/seeder/entity"
	"techdeals/seeder-service/internal/app/seeder/repository"
	"techdeals/seeder-service/internal/app/seeder/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SeederIntegrationTestSuite struct {
	suite.Suite
	client   *mongo.Client
	db       *mongo.Database
	dataDir  string
	products repository.ProductRepository
	deals    repository.DealRepository
	counters repository.CounterRepository
	indexes  repository.IndexManager
}

func TestSeederIntegrationSuite(t *testing.T) {
	suite.Run(t, new(SeederIntegrationTestSuite))
}

func (s *SeederIntegrationTestSuite) SetupSuite() {
	uri := getEnv("TEST_MONGODB_URI", "mongodb://localhost:27017")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	s.client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(s.T(), err, "Failed to connect to MongoDB")
	require.NoError(s.T(), s.client.Ping(ctx, nil), "MongoDB not reachable")

	s.db = s.client.Database("seeder_integration_test")
	s.products = repository.NewProductRepository(s.db)
	s.deals = repository.NewDealRepository(s.db)
	s.counters = repository.NewCounterRepository(s.db)
	s.indexes = repository.NewIndexManager(s.db)

	s.dataDir = s.T().TempDir()
	s.writeDataset()
}

func (s *SeederIntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()
	s.db.Drop(ctx)
	s.client.Disconnect(ctx)
}

func (s *SeederIntegrationTestSuite) SetupTest() {
	_, err := service.NewCleanupService(s.products, s.deals, s.counters, s.indexes).Run(context.Background())
	s.Require().NoError(err)
}

func (s *SeederIntegrationTestSuite) writeDataset() {
	header := "Product Name,Model,Brand,Price in India,Picture URL,1 Stars,2 Stars,3 Stars,4 Stars,5 Stars\n"
	rows := map[string]string{
		"mobiles.csv": header +
			"Galaxy S21,SM-G991,Samsung,\"₹49,999\",https://img.example.com/1.jpg,0,0,0,3,7\n" +
			"Pixel 7,GP7,Google,\"₹39,999\",https://img.example.com/2.jpg,0,0,0,5,5\n" +
			"Nord,N1,OnePlus,\"₹24,999\",https://img.example.com/3.jpg,0,0,1,5,4\n",
		"laptops.csv": header +
			"Inspiron 15,I15,Dell,\"₹60,000\",https://img.example.com/4.jpg,0,0,0,2,8\n" +
			"IdeaPad 3,IP3,Lenovo,\"₹45,000\",https://img.example.com/5.jpg,0,0,0,6,4\n",
	}
	for name, content := range rows {
		require.NoError(s.T(), os.WriteFile(filepath.Join(s.dataDir, name), []byte(content), 0o644))
	}
}

func (s *SeederIntegrationTestSuite) importer(seed uint64) *service.Importer {
	return service.NewImporter(s.products, s.counters,
		service.NewStaticRateProvider(decimal.RequireFromString("1.6")),
		service.NewRand(seed), s.dataDir, 2)
}

func (s *SeederIntegrationTestSuite) TestFullPipeline() {
	ctx := context.Background()

	summary, err := s.importer(1).Run(ctx)
	s.Require().NoError(err)
	s.Equal(5, summary.Inserted)
	s.Equal(int64(5), summary.Total)

	var galaxy entity.Product
	s.Require().NoError(s.db.Collection(entity.ProductsCollection).FindOne(ctx, bson.M{"title": "Galaxy S21"}).Decode(&galaxy))
	s.Equal(int64(79998), galaxy.Price)
	s.Equal("DZD", galaxy.Currency)

	// stock is random, so only products with enough stock become deals
	dealSummary, err := service.NewDealService(s.products, s.deals, s.counters, service.NewRand(1), 50).Generate(ctx, 150)
	s.Require().NoError(err)
	s.Equal(dealSummary.Eligible, dealSummary.Inserted)
	s.Equal(int64(dealSummary.Inserted), dealSummary.Total)
	s.Equal(dealSummary.Total, dealSummary.Current+dealSummary.Upcoming+countEnded(ctx, s.db))
}

func (s *SeederIntegrationTestSuite) TestIdsContinueAcrossRuns() {
	ctx := context.Background()

	_, err := s.importer(2).Run(ctx)
	s.Require().NoError(err)

	// second import into the same collections must not collide on _id
	summary, err := s.importer(3).Run(ctx)
	s.Require().NoError(err)
	s.Equal(int64(10), summary.Total)

	first, err := s.counters.Reserve(ctx, repository.ProductCounter, 1)
	s.Require().NoError(err)
	s.Equal(int64(11), first)
}

func (s *SeederIntegrationTestSuite) TestCleanupIsIdempotent() {
	ctx := context.Background()
	svc := service.NewCleanupService(s.products, s.deals, s.counters, s.indexes)

	first, err := svc.Run(ctx)
	s.Require().NoError(err)
	second, err := svc.Run(ctx)
	s.Require().NoError(err)

	s.Equal(first, second)
	s.Zero(second.ProductsAfter)
}

func (s *SeederIntegrationTestSuite) TestDuplicateSKUIsRejectedByIndex() {
	ctx := context.Background()
	p := entity.Product{ID: 1, SKU: "DUP-SKU-0001-001", Title: "a", Price: 1000, IsActive: true}
	q := p
	q.ID = 2

	n, err := s.products.InsertMany(ctx, []entity.Product{p, q})

	s.Error(err)
	s.Equal(1, n)
}

func countEnded(ctx context.Context, db *mongo.Database) int64 {
	n, _ := db.Collection(entity.DealsCollection).CountDocuments(ctx, bson.M{"endDate": bson.M{"$lt": time.Now()}})
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
