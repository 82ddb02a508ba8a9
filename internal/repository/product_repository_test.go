package repository

import (
	"context"
	"testing"
	"time"

	"productcatalog/internal/model"
	"productcatalog/internal/query"
	"productcatalog/internal/stats"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// setupTestMongoDB 创建测试用的 MongoDB 连接
// 本地没有可用的 MongoDB 时跳过测试
func setupTestMongoDB(t *testing.T) (*mongo.Database, func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoURI := "mongodb://localhost:27017"

	clientOpts := options.Client().ApplyURI(mongoURI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		t.Skipf("跳过测试：无法连接到 MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("跳过测试：MongoDB ping 失败: %v", err)
	}

	db := client.Database("tp_products_test")

	cleanup := func() {
		_ = db.Collection(model.CollectionProducts).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	}

	return db, cleanup
}

// testProducts 固定的测试数据集
func testProducts() []interface{} {
	return []interface{}{
		model.Product{Title: "Red Lipstick", Description: "Matte red lipstick", Category: "beauty", Brand: "Glamour", Price: 10, Stock: 50, Rating: 4.5},
		model.Product{Title: "Blue Mascara", Description: "Waterproof mascara", Category: "beauty", Brand: "Glamour", Price: 20, Stock: 30, Rating: 3.9},
		model.Product{Title: "Leather Sofa", Description: "Three-seat leather sofa", Category: "furniture", Brand: "HomeLux", Price: 30, Stock: 5, Rating: 4.8},
		model.Product{Title: "Gaming Laptop", Description: "High-end gaming laptop", Category: "electronics", Brand: "TechPro", Price: 1500, Stock: 8, Rating: 4.9},
		model.Product{Title: "Smartphone X", Description: "Flagship smartphone", Category: "electronics", Brand: "TechPro", Price: 999, Stock: 20, Rating: 4.2},
		model.Product{Title: "Budget Phone", Description: "Entry level phone", Category: "electronics", Brand: "TechPro", Price: 199, Stock: 40, Rating: 3.5},
	}
}

// seedTestProducts 插入测试数据
func seedTestProducts(t *testing.T, db *mongo.Database) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := db.Collection(model.CollectionProducts)
	_ = collection.Drop(ctx)

	if _, err := collection.InsertMany(ctx, testProducts()); err != nil {
		t.Fatalf("插入测试数据失败: %v", err)
	}
}

func TestProductRepository_List_CategoryFilter(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()
	seedTestProducts(t, db)

	repo := NewProductRepository(db, zap.NewNop())

	result, err := repo.List(context.Background(), query.Params{Category: "electronics"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(result.Products) != 3 {
		t.Fatalf("len(products) = %d, want 3", len(result.Products))
	}
	for _, p := range result.Products {
		if p.Category != "electronics" {
			t.Errorf("category = %q, want electronics", p.Category)
		}
	}
	if result.Pagination.TotalItems != 3 {
		t.Errorf("totalItems = %d, want 3", result.Pagination.TotalItems)
	}
}

func TestProductRepository_List_Search(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()
	seedTestProducts(t, db)

	repo := NewProductRepository(db, zap.NewNop())

	t.Run("匹配标题", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Search: "mascara"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 1 || result.Products[0].Title != "Blue Mascara" {
			t.Errorf("products = %v, want [Blue Mascara]", result.Products)
		}
	})

	t.Run("不区分大小写", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Search: "SOFA"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 1 || result.Products[0].Title != "Leather Sofa" {
			t.Errorf("products = %v, want [Leather Sofa]", result.Products)
		}
	})

	t.Run("匹配描述", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Search: "flagship"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 1 || result.Products[0].Title != "Smartphone X" {
			t.Errorf("products = %v, want [Smartphone X]", result.Products)
		}
	})

	t.Run("无匹配返回空", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Search: "doesnotexist"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 0 {
			t.Errorf("len(products) = %d, want 0", len(result.Products))
		}
		if result.Pagination.TotalItems != 0 || result.Pagination.TotalPages != 0 {
			t.Errorf("pagination = %+v, want zero totals", result.Pagination)
		}
	})

	t.Run("正则元字符按字面处理", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Search: ".*"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 0 {
			t.Errorf("len(products) = %d, want 0 (literal match only)", len(result.Products))
		}
	})
}

func TestProductRepository_List_Sort(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()
	seedTestProducts(t, db)

	repo := NewProductRepository(db, zap.NewNop())

	t.Run("按价格降序", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Sort: "-price"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		for i := 1; i < len(result.Products); i++ {
			if result.Products[i].Price > result.Products[i-1].Price {
				t.Errorf("products not sorted descending by price at index %d", i)
			}
		}
		if result.Products[0].Price != 1500 {
			t.Errorf("first price = %v, want 1500", result.Products[0].Price)
		}
	})

	t.Run("按价格升序", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Sort: "price"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if result.Products[0].Price != 10 {
			t.Errorf("first price = %v, want 10", result.Products[0].Price)
		}
	})

	t.Run("默认为插入顺序", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if result.Products[0].Title != "Red Lipstick" {
			t.Errorf("first title = %q, want Red Lipstick", result.Products[0].Title)
		}
	})
}

func TestProductRepository_List_Pagination(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()
	seedTestProducts(t, db)

	repo := NewProductRepository(db, zap.NewNop())

	t.Run("第二页", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Page: "2", Limit: "2", Sort: "price"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 2 {
			t.Fatalf("len(products) = %d, want 2", len(result.Products))
		}
		// 价格升序为 10,20,30,199,999,1500，第二页应为 30 和 199
		if result.Products[0].Price != 30 || result.Products[1].Price != 199 {
			t.Errorf("page 2 prices = %v, %v, want 30, 199", result.Products[0].Price, result.Products[1].Price)
		}

		want := query.Pagination{
			CurrentPage: 2, TotalPages: 3, Limit: 2, TotalItems: 6,
			HasNextPage: true, HasPrevPage: true,
		}
		if result.Pagination != want {
			t.Errorf("pagination = %+v, want %+v", result.Pagination, want)
		}
	})

	t.Run("超出末尾的页返回空结果", func(t *testing.T) {
		result, err := repo.List(context.Background(), query.Params{Page: "50", Limit: "10"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Products) != 0 {
			t.Errorf("len(products) = %d, want 0", len(result.Products))
		}
		if result.Pagination.HasNextPage {
			t.Error("hasNextPage = true, want false")
		}
	})
}

func TestProductRepository_Stats(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()
	seedTestProducts(t, db)

	repo := NewProductRepository(db, zap.NewNop())

	result, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	// 全局汇总
	global, ok := result.Global.(stats.GlobalStats)
	if !ok {
		t.Fatalf("global = %T, want stats.GlobalStats", result.Global)
	}
	if global.TotalProducts != 6 {
		t.Errorf("global.totalProducts = %d, want 6", global.TotalProducts)
	}
	if global.MaxPrice != 1500 || global.MinPrice != 10 {
		t.Errorf("global price range = [%v, %v], want [10, 1500]", global.MinPrice, global.MaxPrice)
	}
	if global.TotalStock != 153 {
		t.Errorf("global.totalStock = %d, want 153", global.TotalStock)
	}

	// 分类汇总的产品数之和等于总产品数
	sum := 0
	for _, c := range result.ByCategory {
		sum += c.TotalProducts
	}
	if sum != global.TotalProducts {
		t.Errorf("sum of byCategory totals = %d, want %d", sum, global.TotalProducts)
	}

	// beauty 分类：2 个产品，平均价格 15.00，平均评分 4.2
	var beauty *stats.CategoryStats
	for i := range result.ByCategory {
		if result.ByCategory[i].CategoryName == "beauty" {
			beauty = &result.ByCategory[i]
		}
	}
	if beauty == nil {
		t.Fatal("beauty category missing from byCategory")
	}
	if beauty.TotalProducts != 2 {
		t.Errorf("beauty.totalProducts = %d, want 2", beauty.TotalProducts)
	}
	if beauty.AveragePrice != 15 {
		t.Errorf("beauty.averagePrice = %v, want 15", beauty.AveragePrice)
	}
	if beauty.AverageRating != 4.2 {
		t.Errorf("beauty.averageRating = %v, want 4.2", beauty.AverageRating)
	}

	// 分类按平均价格降序
	for i := 1; i < len(result.ByCategory); i++ {
		if result.ByCategory[i].AveragePrice > result.ByCategory[i-1].AveragePrice {
			t.Errorf("byCategory not sorted by averagePrice descending at index %d", i)
		}
	}

	// 高评分高价列表：不包含价格 <= 500 的产品，最多 5 条，按评分降序
	if len(result.TopRatedExpensive) != 2 {
		t.Fatalf("len(topRatedExpensive) = %d, want 2", len(result.TopRatedExpensive))
	}
	for i, p := range result.TopRatedExpensive {
		if p.Price <= 500 {
			t.Errorf("topRatedExpensive[%d].price = %v, want > 500", i, p.Price)
		}
		if i > 0 && p.Rating > result.TopRatedExpensive[i-1].Rating {
			t.Errorf("topRatedExpensive not sorted by rating descending at index %d", i)
		}
	}
	if result.TopRatedExpensive[0].Title != "Gaming Laptop" {
		t.Errorf("top entry = %q, want Gaming Laptop", result.TopRatedExpensive[0].Title)
	}

	// 品牌汇总按库存总价值降序，TechPro 最高
	if len(result.ByBrand) != 3 {
		t.Fatalf("len(byBrand) = %d, want 3", len(result.ByBrand))
	}
	techPro := result.ByBrand[0]
	if techPro.BrandName != "TechPro" {
		t.Fatalf("byBrand[0] = %q, want TechPro", techPro.BrandName)
	}
	// 1500*8 + 999*20 + 199*40 = 39940
	if techPro.TotalValue != 39940 {
		t.Errorf("TechPro.totalValue = %v, want 39940", techPro.TotalValue)
	}
	if techPro.TotalStock != 68 {
		t.Errorf("TechPro.totalStock = %d, want 68", techPro.TotalStock)
	}
	if techPro.ProductCount != 3 {
		t.Errorf("TechPro.productCount = %d, want 3", techPro.ProductCount)
	}
	// (1500+999+199)/3 = 899.333... 保留两位小数
	if techPro.AveragePrice != 899.33 {
		t.Errorf("TechPro.averagePrice = %v, want 899.33", techPro.AveragePrice)
	}
}

func TestProductRepository_Stats_EmptyCollection(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()

	ctx := context.Background()
	_ = db.Collection(model.CollectionProducts).Drop(ctx)

	repo := NewProductRepository(db, zap.NewNop())

	result, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	// 空集合时全局汇总为空对象而不是 null
	if _, ok := result.Global.(struct{}); !ok {
		t.Errorf("global = %#v, want empty struct", result.Global)
	}
	if len(result.ByCategory) != 0 || len(result.TopRatedExpensive) != 0 || len(result.ByBrand) != 0 {
		t.Errorf("expected empty lists, got %+v", result)
	}
}

func TestProductRepository_EnsureIndexes(t *testing.T) {
	db, cleanup := setupTestMongoDB(t)
	defer cleanup()
	seedTestProducts(t, db)

	repo := NewProductRepository(db, zap.NewNop())

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	// 重复执行应当幂等
	if err := repo.EnsureIndexes(context.Background()); err != nil {
		t.Fatalf("EnsureIndexes (second run) failed: %v", err)
	}
}
