package service

import "FinCast/internal/domain/models"

// FeatureExtractor derives a FeatureSet from a quote and its sentiment.
type FeatureExtractor interface {
	Extract(q models.Quote, s models.Sentiment) (models.FeatureSet, error)
}

// PricePredictor projects a next-day price from a quote and its features.
type PricePredictor interface {
	Predict(q models.Quote, f models.FeatureSet) models.Prediction
}
