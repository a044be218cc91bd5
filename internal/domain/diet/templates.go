package diet

type template struct {
	morning      []string
	lunch        []string
	evening      []string
	guidelines   []string
	restrictions []string
}

var templates = map[string]map[string]template{
	Vata: {
		Spring: {
			morning:      []string{"Warm oats porridge with ghee", "Soaked almonds", "Ginger tea"},
			lunch:        []string{"Basmati rice", "Moong dal", "Steamed carrots and beetroot", "Buttermilk with cumin"},
			evening:      []string{"Vegetable khichdi", "Warm milk with nutmeg"},
			guidelines:   []string{"Eat warm, freshly cooked food", "Keep regular meal times", "Favour sweet, sour and salty tastes"},
			restrictions: []string{"Raw salads", "Cold drinks", "Dry crackers"},
		},
		Summer: {
			morning:      []string{"Rice flakes with coconut milk", "Sweet ripe mango", "Fennel water"},
			lunch:        []string{"Rice", "Yellow moong dal", "Bottle gourd curry", "Sweet lassi"},
			evening:      []string{"Semolina upma with vegetables", "Warm milk with cardamom"},
			guidelines:   []string{"Stay hydrated with room-temperature water", "Use ghee generously", "Rest after lunch"},
			restrictions: []string{"Iced beverages", "Excess chilli", "Skipping meals"},
		},
		Monsoon: {
			morning:      []string{"Broken wheat porridge", "Stewed apple with cinnamon", "Tulsi ginger tea"},
			lunch:        []string{"Red rice", "Toor dal with hing", "Sauteed pumpkin", "Thin buttermilk"},
			evening:      []string{"Moong dal soup", "Phulka with ghee"},
			guidelines:   []string{"Drink boiled and cooled water", "Add digestive spices like hing and ginger", "Prefer light, warm meals"},
			restrictions: []string{"Leafy greens from the market", "Street food", "Curd at night"},
		},
		Autumn: {
			morning:      []string{"Sweet potato mash with ghee", "Dates", "Warm spiced milk"},
			lunch:        []string{"Rice", "Urad dal", "Roasted root vegetables", "Sesame chutney"},
			evening:      []string{"Wheat dalia khichdi", "Herbal tea with licorice"},
			guidelines:   []string{"Oil massage before bathing", "Favour grounding, moist foods", "Go to bed early"},
			restrictions: []string{"Popcorn and puffed snacks", "Caffeine", "Cold leftovers"},
		},
		Winter: {
			morning:      []string{"Sesame and jaggery ladoo", "Hot wheat porridge", "Ginger tea"},
			lunch:        []string{"Bajra roti with ghee", "Urad dal", "Sarson saag", "Warm soup"},
			evening:      []string{"Vegetable stew with rice", "Turmeric milk"},
			guidelines:   []string{"Eat substantial warm meals", "Use warming spices", "Keep the body covered and warm"},
			restrictions: []string{"Ice cream", "Raw sprouts", "Fasting"},
		},
	},
	Pitta: {
		Spring: {
			morning:      []string{"Rice flakes with milk", "Sweet pears", "Coriander water"},
			lunch:        []string{"Basmati rice", "Moong dal", "Zucchini sabzi", "Cucumber raita"},
			evening:      []string{"Barley khichdi", "Coconut water"},
			guidelines:   []string{"Favour sweet, bitter and astringent tastes", "Eat at regular times", "Avoid eating when angry"},
			restrictions: []string{"Fermented foods", "Deep-fried snacks", "Excess salt"},
		},
		Summer: {
			morning:      []string{"Coconut water", "Sweet melon", "Soaked raisins"},
			lunch:        []string{"Rice", "Moong dal", "Ash gourd curry", "Mint buttermilk"},
			evening:      []string{"Rice kanji", "Cooling fennel milk"},
			guidelines:   []string{"Prefer cooling foods and drinks", "Avoid midday sun", "Eat light dinners"},
			restrictions: []string{"Chillies and pickles", "Alcohol", "Sour curd"},
		},
		Monsoon: {
			morning:      []string{"Wheat porridge with ghee", "Pomegranate", "Coriander tea"},
			lunch:        []string{"Old rice", "Moong dal soup", "Ridge gourd curry", "Thin buttermilk"},
			evening:      []string{"Vegetable soup", "Phulka"},
			guidelines:   []string{"Drink boiled water", "Eat freshly cooked food", "Keep meals mildly spiced"},
			restrictions: []string{"Sour fruits", "Heavy gravies", "Eating out"},
		},
		Autumn: {
			morning:      []string{"Rice flakes with ghee and sugar", "Sweet grapes", "Amla juice"},
			lunch:        []string{"Rice", "Moong dal", "Bitter gourd stir fry", "Ghee"},
			evening:      []string{"Wheat dalia with milk", "Rose water drink"},
			guidelines:   []string{"Favour bitter and sweet tastes", "Take ghee to pacify heat", "Avoid sleeping in the day"},
			restrictions: []string{"Curd", "Garlic and onion in excess", "Vinegar"},
		},
		Winter: {
			morning:      []string{"Warm oats with dates", "Soaked almonds", "Fennel tea"},
			lunch:        []string{"Wheat roti", "Toor dal", "Cauliflower and peas", "Ghee"},
			evening:      []string{"Vegetable khichdi", "Warm milk with saffron"},
			guidelines:   []string{"Eat warm but mildly spiced food", "Keep hydration up", "Exercise in the morning"},
			restrictions: []string{"Very spicy curries", "Red meat", "Excess coffee"},
		},
	},
	Kapha: {
		Spring: {
			morning:      []string{"Warm water with honey and lemon", "Millet porridge", "Ginger tea"},
			lunch:        []string{"Barley roti", "Horse gram dal", "Bitter gourd sabzi", "Steamed greens"},
			evening:      []string{"Clear vegetable soup", "Roasted chana"},
			guidelines:   []string{"Favour pungent, bitter and astringent tastes", "Exercise daily", "Keep dinner light and early"},
			restrictions: []string{"Dairy in excess", "Sweets", "Day sleep"},
		},
		Summer: {
			morning:      []string{"Apple", "Puffed rice with spices", "Mint tea"},
			lunch:        []string{"Jowar roti", "Moong dal", "Bottle gourd curry", "Thin buttermilk"},
			evening:      []string{"Vegetable daliya", "Warm water"},
			guidelines:   []string{"Stay active", "Prefer light grains", "Hydrate without overdrinking"},
			restrictions: []string{"Heavy desserts", "Cold milkshakes", "Fried snacks"},
		},
		Monsoon: {
			morning:      []string{"Dry roasted oats", "Ginger honey tea"},
			lunch:        []string{"Old barley", "Moong dal with pepper", "Stir-fried beans", "Rasam"},
			evening:      []string{"Hot vegetable soup", "Multigrain toast"},
			guidelines:   []string{"Eat only when hungry", "Use dry ginger and black pepper", "Avoid damp places"},
			restrictions: []string{"Curd", "Cold water", "Heavy pulses like urad"},
		},
		Autumn: {
			morning:      []string{"Ragi porridge without sugar", "Pomegranate", "Tulsi tea"},
			lunch:        []string{"Millet roti", "Masoor dal", "Mixed vegetable sabzi", "Buttermilk with ginger"},
			evening:      []string{"Moong soup", "Steamed vegetables"},
			guidelines:   []string{"Keep portions moderate", "Walk after meals", "Prefer warm spiced drinks"},
			restrictions: []string{"Cheese", "Bakery products", "Late-night meals"},
		},
		Winter: {
			morning:      []string{"Bajra porridge", "Ginger pepper tea"},
			lunch:        []string{"Bajra roti", "Horse gram soup", "Radish sabzi", "Garlic chutney"},
			evening:      []string{"Vegetable clear soup", "Roasted makhana"},
			guidelines:   []string{"Use warming spices", "Exercise vigorously", "Avoid oversleeping"},
			restrictions: []string{"Ice cream", "Heavy sweets", "Excess oil"},
		},
	},
	Tridosha: {
		Spring: {
			morning:      []string{"Seasonal fruit", "Vegetable poha", "Herbal tea"},
			lunch:        []string{"Rice or roti", "Moong dal", "Seasonal vegetable sabzi", "Buttermilk"},
			evening:      []string{"Vegetable khichdi", "Warm water"},
			guidelines:   []string{"Eat freshly cooked balanced meals", "Include all six tastes", "Maintain regular meal times"},
			restrictions: []string{"Processed food", "Overeating", "Heavy meals late at night"},
		},
		Summer: {
			morning:      []string{"Sweet fruits", "Rice flakes with milk", "Coconut water"},
			lunch:        []string{"Rice", "Dal", "Gourd vegetables", "Mint buttermilk"},
			evening:      []string{"Light khichdi", "Fennel milk"},
			guidelines:   []string{"Keep cool and hydrated", "Prefer light meals", "Rest during peak heat"},
			restrictions: []string{"Spicy fried food", "Alcohol", "Cold refrigerated drinks"},
		},
		Monsoon: {
			morning:      []string{"Warm porridge", "Ginger tea"},
			lunch:        []string{"Old rice", "Moong dal", "Cooked vegetables", "Rasam"},
			evening:      []string{"Soup", "Phulka"},
			guidelines:   []string{"Drink boiled water", "Use digestive spices", "Eat lightly"},
			restrictions: []string{"Street food", "Raw salads", "Curd at night"},
		},
		Autumn: {
			morning:      []string{"Stewed fruit", "Wheat porridge", "Herbal tea"},
			lunch:        []string{"Rice", "Moong dal", "Root vegetables", "Ghee"},
			evening:      []string{"Dalia khichdi", "Warm milk"},
			guidelines:   []string{"Favour sweet and bitter tastes", "Keep a steady routine", "Sleep early"},
			restrictions: []string{"Fermented food", "Excess sour taste", "Irregular meals"},
		},
		Winter: {
			morning:      []string{"Sesame ladoo", "Hot porridge", "Ginger tea"},
			lunch:        []string{"Millet or wheat roti", "Dal", "Green leafy vegetables", "Ghee"},
			evening:      []string{"Vegetable stew", "Turmeric milk"},
			guidelines:   []string{"Eat warm nourishing food", "Exercise regularly", "Use warming spices"},
			restrictions: []string{"Cold food", "Fasting for long", "Excess caffeine"},
		},
	},
}
