package predictions

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Precaution is one heart-health precaution card. The content targets an
// Indian audience; the tip field carries the locale-specific advice.
type Precaution struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Details     []string `json:"details"`
	Priority    string   `json:"priority"`
	Tip         string   `json:"tip"`
}

// Recommendation is one actionable item inside a recommendation category.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Timeframe   string `json:"timeframe"`
}

// RecommendationGroup groups recommendations by lifestyle area.
type RecommendationGroup struct {
	Category string           `json:"category"`
	Items    []Recommendation `json:"items"`
}

var precautions = []Precaution{
	{
		Title:       "Regular Exercise (Vyayam)",
		Description: "30 minutes of brisk walking or yoga daily. Include pranayama for heart health.",
		Details: []string{
			"Morning walks ideal in Indian climate",
			"Avoid midday sun (11am-4pm)",
			"Yoga asanas: Surya Namaskar, Bhujangasana",
			"Pranayama: Anulom Vilom, Kapalbhati daily",
		},
		Priority: "high",
		Tip:      "Morning walks are ideal in Indian climate. Avoid midday sun.",
	},
	{
		Title:       "Heart-Healthy Indian Diet",
		Description: "Include whole grains, dal, seasonal vegetables, and fruits",
		Details: []string{
			"Traditional foods: moong dal, methi, karela, amla",
			"Limit ghee, reduce salt in pickles",
			"Prefer home-cooked meals over street food",
			"Add turmeric, garlic, ginger to cooking",
		},
		Priority: "high",
		Tip:      "Limit ghee, reduce salt in pickles, prefer home-cooked meals.",
	},
	{
		Title:       "Stress Management (Mann ki Shanti)",
		Description: "Practice meditation, yoga, and deep breathing exercises daily",
		Details: []string{
			"Try Vipassana or transcendental meditation",
			"Join local yoga centers",
			"Practice mindfulness daily",
			"Stay connected with family",
		},
		Priority: "high",
		Tip:      "Try Vipassana or transcendental meditation. Join local yoga centers.",
	},
	{
		Title:       "Regular Health Checkups",
		Description: "Monitor BP, cholesterol, and blood sugar every 3-6 months",
		Details: []string{
			"Free health camps at govt hospitals",
			"Regular BP monitoring",
			"HbA1c tests for diabetes control",
			"Annual comprehensive checkup",
		},
		Priority: "high",
		Tip:      "Many government hospitals offer free health camps. Utilize them.",
	},
	{
		Title:       "Quit Smoking & Tobacco",
		Description: "Avoid cigarettes, bidi, hookah, and chewing tobacco completely",
		Details: []string{
			"Join tobacco cessation programs",
			"Call national quitline: 1800-11-2356",
			"Avoid gutkha and paan masala",
			"Seek support from local health centers",
		},
		Priority: "high",
		Tip:      "Join tobacco cessation programs. Call national quitline: 1800-11-2356.",
	},
	{
		Title:       "Limit Alcohol",
		Description: "If you drink, limit to moderate amounts. Better to avoid completely",
		Details: []string{
			"Choose buttermilk, coconut water instead",
			"Herbal teas: tulsi, ginger, cardamom",
			"Avoid heavy drinking culture",
			"Stay hydrated with Indian beverages",
		},
		Priority: "medium",
		Tip:      "Choose healthy Indian beverages like buttermilk, coconut water, herbal teas.",
	},
	{
		Title:       "Control Diabetes",
		Description: "India has high diabetes rates. Keep blood sugar in check",
		Details: []string{
			"Regular HbA1c tests",
			"Limit rice/roti portions",
			"Increase fiber intake",
			"Monitor fasting & post-meal glucose",
		},
		Priority: "high",
		Tip:      "Regular HbA1c tests, limit rice/roti portions, increase fiber intake.",
	},
	{
		Title:       "Monitor Blood Pressure",
		Description: "Keep BP under 120/80 mmHg. Check regularly at home",
		Details: []string{
			"Reduce salt in dal, sabzi",
			"Avoid packaged snacks and papad",
			"Home BP monitor recommended",
			"Track readings in diary",
		},
		Priority: "high",
		Tip:      "Reduce salt in dal, sabzi. Avoid packaged snacks and papad.",
	},
}

var recommendations = []RecommendationGroup{
	{
		Category: "Indian Diet & Nutrition",
		Items: []Recommendation{
			{Title: "Traditional Indian Foods", Description: "Moong dal, methi, karela, amla for heart health", Priority: "high", Timeframe: "Daily"},
			{Title: "Heart-Friendly Oils", Description: "Use mustard/groundnut oil in moderation", Priority: "high", Timeframe: "Daily Cooking"},
			{Title: "Indian Spices", Description: "Add turmeric, garlic, ginger, cinnamon daily", Priority: "medium", Timeframe: "Every Meal"},
			{Title: "Seasonal Fruits", Description: "Guava, papaya, pomegranate, sapota", Priority: "medium", Timeframe: "Daily"},
		},
	},
	{
		Category: "Physical Activity (Indian Context)",
		Items: []Recommendation{
			{Title: "Morning/Evening Walks", Description: "30 min walks in parks or residential areas", Priority: "high", Timeframe: "Daily"},
			{Title: "Yoga & Pranayama", Description: "Surya Namaskar, Anulom Vilom (5-10 min)", Priority: "high", Timeframe: "Daily"},
			{Title: "Community Sports", Description: "Cricket, badminton, kabaddi in local grounds", Priority: "medium", Timeframe: "3x per week"},
			{Title: "Indian Dance Forms", Description: "Bharatanatyam, Kathak, Garba as cardio", Priority: "medium", Timeframe: "Weekly"},
		},
	},
	{
		Category: "Avoid These (Common in India)",
		Items: []Recommendation{
			{Title: "Excessive Chai/Tea", Description: "Limit to 2-3 cups with less sugar", Priority: "high", Timeframe: "Starting Now"},
			{Title: "Street Food", Description: "Avoid high trans-fat unhygienic food", Priority: "high", Timeframe: "Ongoing"},
			{Title: "Tobacco Products", Description: "No cigarettes, bidi, gutkha, paan masala", Priority: "high", Timeframe: "Immediately"},
			{Title: "Heavy Dinner", Description: "Avoid rice and fried foods before sleep", Priority: "medium", Timeframe: "Daily"},
		},
	},
}

// Precautions serves the static precaution cards. No auth needed; the
// content is the same for every user.
func Precautions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"precautions": precautions})
}

// Recommendations serves the static lifestyle recommendation groups.
func Recommendations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}
