// Package model はドメインモデルを定義する。
package model

import "time"

// Macronutrients は主要栄養素の内訳を表す。単位はグラム。
type Macronutrients struct {
	ProteinG       float64 `json:"protein_g"`
	CarbohydratesG float64 `json:"carbohydrates_g"`
	FatsG          float64 `json:"fats_g"`
	FiberG         float64 `json:"fiber_g"`
	SugarsG        float64 `json:"sugars_g"`
}

// Micronutrients は微量栄養素の内訳を表す。
type Micronutrients struct {
	SodiumMg      float64 `json:"sodium_mg"`
	PotassiumMg   float64 `json:"potassium_mg"`
	CalciumMg     float64 `json:"calcium_mg"`
	IronMg        float64 `json:"iron_mg"`
	VitaminCMg    float64 `json:"vitamin_c_mg"`
	VitaminDMcg   float64 `json:"vitamin_d_mcg"`
	VitaminB12Mcg float64 `json:"vitamin_b12_mcg"`
}

// NutritionData は生成AIが返す構造化栄養データを表す。
// 生成AIのレスポンススキーマと同じJSON構造を持つ。
type NutritionData struct {
	FoodName       string         `json:"food_name"`
	ServingSize    float64        `json:"serving_size"`
	Calories       float64        `json:"calories"`
	Macronutrients Macronutrients `json:"macronutrients"`
	Micronutrients Micronutrients `json:"micronutrients"`
	HealthyScore   int            `json:"healthy_score"`
	Notes          string         `json:"notes"`
}

// NutritionLog は永続化された栄養記録を表す。
// nutrition_logsテーブルの行に対応するフラットな構造。
// 作成後は変更されず、削除はIDでのみ行われる。
type NutritionLog struct {
	ID             int64     `json:"id"`
	FoodName       string    `json:"food_name"`
	ServingSize    float64   `json:"serving_size"`
	Calories       float64   `json:"calories"`
	ProteinG       float64   `json:"protein_g"`
	CarbohydratesG float64   `json:"carbohydrates_g"`
	FatsG          float64   `json:"fats_g"`
	FiberG         float64   `json:"fiber_g"`
	SugarsG        float64   `json:"sugars_g"`
	SodiumMg       float64   `json:"sodium_mg"`
	PotassiumMg    float64   `json:"potassium_mg"`
	CalciumMg      float64   `json:"calcium_mg"`
	IronMg         float64   `json:"iron_mg"`
	VitaminCMg     float64   `json:"vitamin_c_mg"`
	VitaminDMcg    float64   `json:"vitamin_d_mcg"`
	VitaminB12Mcg  float64   `json:"vitamin_b12_mcg"`
	HealthyScore   int       `json:"healthy_score"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}
