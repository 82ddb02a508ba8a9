package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollectionProducts 产品集合名称
const CollectionProducts = "products"

// Product 产品 MongoDB 存储模型
// 数据由 seeder 从外部数据源全量导入，API 侧只读
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    string             `bson:"category" json:"category"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price       float64            `bson:"price" json:"price"`                 // 价格，非负
	Stock       int                `bson:"stock" json:"stock"`                 // 库存数量，非负
	Rating      float64            `bson:"rating,omitempty" json:"rating,omitempty"` // 评分（0-5）

	// 数据源附带字段，原样保留
	DiscountPercentage float64  `bson:"discountPercentage,omitempty" json:"discountPercentage,omitempty"`
	Thumbnail          string   `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Images             []string `bson:"images,omitempty" json:"images,omitempty"`
}
