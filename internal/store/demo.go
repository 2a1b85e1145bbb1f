package store

import "dialogue-orchestrator/internal/models"

func intPtr(v int) *int { return &v }

// DemoCatalog is a small catalog covering every category the dialogue
// engine reasons about. Both store adapters can be seeded with it.
func DemoCatalog() (restaurants []models.Restaurant, items []models.MenuItem) {
	restaurants = []models.Restaurant{
		{ID: "r-paradise", Name: "Paradise", Cuisine: "Hyderabadi", Rating: 4.5, DeliveryTimeMinutes: 35, DeliveryFee: 30, MinOrder: 150},
		{ID: "r-pizzaria", Name: "Napoli Pizzeria", Cuisine: "Italian", Rating: 4.2, DeliveryTimeMinutes: 30, DeliveryFee: 40, MinOrder: 200},
		{ID: "r-greenbowl", Name: "Green Bowl", Cuisine: "Healthy", Rating: 4.6, DeliveryTimeMinutes: 25, DeliveryFee: 20, MinOrder: 100},
		{ID: "r-dragon", Name: "Dragon Wok", Cuisine: "Chinese", Rating: 4.0, DeliveryTimeMinutes: 40, DeliveryFee: 35, MinOrder: 180},
		{ID: "r-newcafe", Name: "New Cafe", Cuisine: "Cafe", Rating: 3.9, DeliveryTimeMinutes: 20, DeliveryFee: 15, MinOrder: 80},
	}
	items = []models.MenuItem{
		{ID: "m-chicken-biryani", RestaurantID: "r-paradise", Name: "Chicken Biryani", Description: "Dum-cooked basmati with spiced chicken", Price: 280, Category: "Biryani", Rating: 4.7, SpiceLevel: intPtr(4), Calories: intPtr(780), Allergens: []string{"dairy"}, Available: true},
		{ID: "m-veg-biryani", RestaurantID: "r-paradise", Name: "Veg Biryani", Description: "Seasonal vegetables and saffron rice", Price: 220, Category: "Biryani", Rating: 4.3, IsVegetarian: true, SpiceLevel: intPtr(3), Calories: intPtr(620), Available: true},
		{ID: "m-double-ka-meetha", RestaurantID: "r-paradise", Name: "Double Ka Meetha", Description: "Bread pudding with dry fruits", Price: 120, Category: "Dessert", Rating: 4.4, IsVegetarian: true, SpiceLevel: intPtr(0), Calories: intPtr(450), Allergens: []string{"dairy", "nuts"}, Available: true},
		{ID: "m-lassi", RestaurantID: "r-paradise", Name: "Sweet Lassi", Description: "Chilled yogurt drink", Price: 80, Category: "Beverage", Rating: 4.5, IsVegetarian: true, SpiceLevel: intPtr(0), Calories: intPtr(220), Allergens: []string{"dairy"}, Available: true},
		{ID: "m-margherita", RestaurantID: "r-pizzaria", Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Price: 350, Category: "Pizza", Rating: 4.4, IsVegetarian: true, SpiceLevel: intPtr(1), Calories: intPtr(900), Allergens: []string{"gluten", "dairy"}, Available: true},
		{ID: "m-pepperoni", RestaurantID: "r-pizzaria", Name: "Pepperoni Pizza", Description: "Spicy pepperoni and mozzarella", Price: 420, Category: "Pizza", Rating: 4.1, SpiceLevel: intPtr(3), Calories: intPtr(1100), Allergens: []string{"gluten", "dairy"}, Available: true},
		{ID: "m-tiramisu", RestaurantID: "r-pizzaria", Name: "Tiramisu", Description: "Coffee-soaked sponge with mascarpone", Price: 200, Category: "Dessert", Rating: 4.6, IsVegetarian: true, SpiceLevel: intPtr(0), Calories: intPtr(480), Allergens: []string{"dairy", "eggs", "gluten"}, Available: true},
		{ID: "m-quinoa-bowl", RestaurantID: "r-greenbowl", Name: "Quinoa Power Bowl", Description: "Quinoa, chickpeas, greens, tahini", Price: 260, Category: "Salad", Rating: 4.6, IsVegetarian: true, SpiceLevel: intPtr(1), Calories: intPtr(420), Allergens: []string{"sesame"}, Available: true},
		{ID: "m-peanut-salad", RestaurantID: "r-greenbowl", Name: "Thai Peanut Salad", Description: "Crunchy greens with peanut dressing", Price: 240, Category: "Salad", Rating: 4.5, IsVegetarian: true, SpiceLevel: intPtr(2), Calories: intPtr(380), Allergens: []string{"peanuts"}, Available: true},
		{ID: "m-green-juice", RestaurantID: "r-greenbowl", Name: "Green Detox Juice", Description: "Spinach, apple, ginger", Price: 150, Category: "Beverage", Rating: 4.2, IsVegetarian: true, SpiceLevel: intPtr(0), Calories: intPtr(120), Available: true},
		{ID: "m-kung-pao", RestaurantID: "r-dragon", Name: "Kung Pao Chicken", Description: "Wok-tossed chicken with peanuts and chilli", Price: 300, Category: "Main Course", Rating: 4.3, SpiceLevel: intPtr(5), Calories: intPtr(650), Allergens: []string{"peanuts", "soy"}, Available: true},
		{ID: "m-veg-noodles", RestaurantID: "r-dragon", Name: "Veg Hakka Noodles", Description: "Stir-fried noodles with vegetables", Price: 190, Category: "Noodles", Rating: 3.9, IsVegetarian: true, SpiceLevel: intPtr(2), Calories: intPtr(560), Allergens: []string{"soy", "gluten"}, Available: true},
		{ID: "m-spring-rolls", RestaurantID: "r-dragon", Name: "Spring Rolls", Description: "Crispy vegetable rolls", Price: 140, Category: "Starter", Rating: 4.0, IsVegetarian: true, SpiceLevel: intPtr(1), Calories: intPtr(300), Allergens: []string{"gluten"}, Available: false},
	}
	return restaurants, items
}
