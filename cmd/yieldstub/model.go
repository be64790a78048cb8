package main

import (
	"math"
	"sort"

	"farmgrid/internal/yield"
)

type crop struct {
	name     string
	optTemp  float64
	optHumid float64
	// per nutrient output at optimal conditions
	output map[yield.Nutrient]float64
}

var crops = []crop{
	{"Wheat", 18, 55, map[yield.Nutrient]float64{yield.Calories: 9.1, yield.Protein: 3.3, yield.Oil: 0.6, yield.Carbohydrates: 7.4, yield.EFA: 0.3}},
	{"Maize", 25, 65, map[yield.Nutrient]float64{yield.Calories: 11.2, yield.Protein: 2.9, yield.Oil: 1.4, yield.Carbohydrates: 8.8, yield.EFA: 0.7}},
	{"Rice", 27, 80, map[yield.Nutrient]float64{yield.Calories: 10.4, yield.Protein: 2.1, yield.Oil: 0.4, yield.Carbohydrates: 9.3, yield.EFA: 0.2}},
	{"Soybean", 23, 70, map[yield.Nutrient]float64{yield.Calories: 6.2, yield.Protein: 5.6, yield.Oil: 2.9, yield.Carbohydrates: 3.1, yield.EFA: 1.6}},
	{"Rapeseed", 15, 60, map[yield.Nutrient]float64{yield.Calories: 5.8, yield.Protein: 2.4, yield.Oil: 4.1, yield.Carbohydrates: 2.2, yield.EFA: 2.3}},
	{"Potato", 16, 75, map[yield.Nutrient]float64{yield.Calories: 8.7, yield.Protein: 1.8, yield.Oil: 0.1, yield.Carbohydrates: 8.1, yield.EFA: 0.1}},
	{"Lentil", 20, 45, map[yield.Nutrient]float64{yield.Calories: 5.1, yield.Protein: 4.7, yield.Oil: 0.3, yield.Carbohydrates: 4.2, yield.EFA: 0.4}},
}

// Rank scores every crop for the conditions, best first. Output falls off
// with a Gaussian in distance from the crop's optimal temperature and
// humidity.
func Rank(temp, humidity float64, n yield.Nutrient) []yield.Ranked {
	out := make([]yield.Ranked, 0, len(crops))
	for _, c := range crops {
		dt := (temp - c.optTemp) / 10
		dh := (humidity - c.optHumid) / 30
		v := c.output[n] * math.Exp(-(dt*dt + dh*dh))
		out = append(out, yield.Ranked{Crop: c.name, Value: math.Round(v*1000) / 1000})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}
