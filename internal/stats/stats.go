// Package stats 定义产品统计的聚合管道和结果模型
// 四个管道互相独立，形状固定，不受请求参数影响
package stats

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CategoryStats 按分类汇总结果
type CategoryStats struct {
	CategoryName  string  `bson:"categoryName" json:"categoryName"`
	TotalProducts int     `bson:"totalProducts" json:"totalProducts"`
	AveragePrice  float64 `bson:"averagePrice" json:"averagePrice"`
	MaxPrice      float64 `bson:"maxPrice" json:"maxPrice"`
	MinPrice      float64 `bson:"minPrice" json:"minPrice"`
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
}

// TopProduct 高评分高价产品条目
type TopProduct struct {
	Title    string  `bson:"title" json:"title"`
	Price    float64 `bson:"price" json:"price"`
	Rating   float64 `bson:"rating" json:"rating"`
	Brand    string  `bson:"brand,omitempty" json:"brand,omitempty"`
	Category string  `bson:"category" json:"category"`
}

// BrandStats 按品牌的库存估值结果
type BrandStats struct {
	BrandName    string  `bson:"brandName" json:"brandName"`
	TotalStock   int     `bson:"totalStock" json:"totalStock"`
	TotalValue   float64 `bson:"totalValue" json:"totalValue"`
	ProductCount int     `bson:"productCount" json:"productCount"`
	AveragePrice float64 `bson:"averagePrice" json:"averagePrice"`
}

// GlobalStats 全局汇总结果
type GlobalStats struct {
	TotalProducts int     `bson:"totalProducts" json:"totalProducts"`
	AveragePrice  float64 `bson:"averagePrice" json:"averagePrice"`
	MaxPrice      float64 `bson:"maxPrice" json:"maxPrice"`
	MinPrice      float64 `bson:"minPrice" json:"minPrice"`
	TotalStock    int     `bson:"totalStock" json:"totalStock"`
	AverageRating float64 `bson:"averageRating" json:"averageRating"`
}

// Statistics 合并后的统计响应载荷
// Global 在集合为空时为 {}（而不是 null）
type Statistics struct {
	Global            interface{}     `json:"global"`
	ByCategory        []CategoryStats `json:"byCategory"`
	TopRatedExpensive []TopProduct    `json:"topRatedExpensive"`
	ByBrand           []BrandStats    `json:"byBrand"`
}

// ByCategoryPipeline 按分类分组：数量、平均/最高/最低价格、平均评分
// 平均值保留两位小数，按平均价格降序
func ByCategoryPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           "$category",
			"totalProducts": bson.M{"$sum": 1},
			"avgPrice":      bson.M{"$avg": "$price"},
			"maxPrice":      bson.M{"$max": "$price"},
			"minPrice":      bson.M{"$min": "$price"},
			"avgRating":     bson.M{"$avg": "$rating"},
		}}},
		{{Key: "$sort", Value: bson.M{"avgPrice": -1}}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"categoryName":  "$_id",
			"totalProducts": 1,
			"averagePrice":  bson.M{"$round": bson.A{"$avgPrice", 2}},
			"maxPrice":      1,
			"minPrice":      1,
			"averageRating": bson.M{"$round": bson.A{"$avgRating", 2}},
		}}},
	}
}

// TopRatedExpensivePipeline 价格大于 500 的产品中评分最高的前 5 个
// 评分相同的顺序由存储引擎决定
func TopRatedExpensivePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"price": bson.M{"$gt": 500}}}},
		{{Key: "$sort", Value: bson.M{"rating": -1}}},
		{{Key: "$limit", Value: 5}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"title":    1,
			"price":    1,
			"rating":   1,
			"brand":    1,
			"category": 1,
		}}},
	}
}

// ByBrandPipeline 按品牌分组：总库存、库存总价值（价格×库存求和）、
// 产品数量、平均价格。总价值和平均价格保留两位小数，按总价值降序
func ByBrandPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":          "$brand",
			"totalStock":   bson.M{"$sum": "$stock"},
			"totalValue":   bson.M{"$sum": bson.M{"$multiply": bson.A{"$price", "$stock"}}},
			"productCount": bson.M{"$sum": 1},
			"avgPrice":     bson.M{"$avg": "$price"},
		}}},
		{{Key: "$sort", Value: bson.M{"totalValue": -1}}},
		{{Key: "$project", Value: bson.M{
			"_id":          0,
			"brandName":    "$_id",
			"totalStock":   1,
			"totalValue":   bson.M{"$round": bson.A{"$totalValue", 2}},
			"productCount": 1,
			"averagePrice": bson.M{"$round": bson.A{"$avgPrice", 2}},
		}}},
	}
}

// GlobalPipeline 整个集合的单组汇总
func GlobalPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"totalProducts": bson.M{"$sum": 1},
			"avgPrice":      bson.M{"$avg": "$price"},
			"maxPrice":      bson.M{"$max": "$price"},
			"minPrice":      bson.M{"$min": "$price"},
			"totalStock":    bson.M{"$sum": "$stock"},
			"avgRating":     bson.M{"$avg": "$rating"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"totalProducts": 1,
			"averagePrice":  bson.M{"$round": bson.A{"$avgPrice", 2}},
			"maxPrice":      1,
			"minPrice":      1,
			"totalStock":    1,
			"averageRating": bson.M{"$round": bson.A{"$avgRating", 2}},
		}}},
	}
}
