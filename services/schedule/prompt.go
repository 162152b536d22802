package schedule

import (
	"fmt"

	"github.com/ghuser/upkeep/pkg/completion"
	"github.com/ghuser/upkeep/services/records/domain/models"
)

const (
	vehicleSystemPrompt = "You are a vehicle maintenance expert. Always respond with valid JSON only, no additional text or formatting."
	homeSystemPrompt    = "You are a home maintenance expert. Always respond with valid JSON only, no additional text or formatting."
)

// categoryContext expands a home item's category code into a phrase the
// completion service can reason about.
var categoryContext = map[string]string{
	"hvac":       "HVAC system (heating, ventilation, air conditioning)",
	"lawn":       "lawn and garden equipment",
	"appliance":  "home appliance",
	"plumbing":   "plumbing equipment",
	"electrical": "electrical equipment",
	"pool":       "pool and spa equipment",
	"generator":  "generator or power equipment",
	"security":   "security and safety equipment",
	"other":      "home equipment",
}

// buildMessages assembles the system + user messages for the item's kind.
func buildMessages(item models.Item) []completion.Message {
	if item.Kind == models.KindHome {
		return []completion.Message{
			{Role: completion.RoleSystem, Content: homeSystemPrompt},
			{Role: completion.RoleUser, Content: buildHomePrompt(item)},
		}
	}
	return []completion.Message{
		{Role: completion.RoleSystem, Content: vehicleSystemPrompt},
		{Role: completion.RoleUser, Content: buildVehiclePrompt(item)},
	}
}

func buildVehiclePrompt(item models.Item) string {
	return fmt.Sprintf(`You are a vehicle maintenance expert. For a %d %s %s, provide a comprehensive list of maintenance tasks with intervals.

Return ONLY a JSON array of maintenance tasks with this exact structure:
[
  {
    "title": "Oil Change",
    "description": "Replace engine oil and filter",
    "intervalMonths": 6,
    "intervalMiles": 5000
  },
  {
    "title": "Tire Rotation",
    "description": "Rotate tires to ensure even wear",
    "intervalMonths": 6,
    "intervalMiles": 7500
  }
]

Include these common maintenance tasks with appropriate intervals for this specific vehicle:
- Oil changes
- Tire rotation
- Air filter replacement
- Cabin air filter replacement
- Brake inspection
- Transmission fluid change
- Coolant flush
- Spark plug replacement
- Brake fluid change
- Power steering fluid change
- Differential service
- Timing belt replacement (if applicable)
- Fuel filter replacement

Provide realistic intervals based on manufacturer recommendations for this specific year, make, and model. Include both time-based (months) and mileage-based intervals where appropriate.`,
		item.Year, item.Make, item.Model)
}

func buildHomePrompt(item models.Item) string {
	category := categoryContext[item.Category]
	if category == "" {
		category = categoryContext["other"]
	}
	return fmt.Sprintf(`You are a home maintenance expert with access to major home improvement retailers. For a %d %s %s (%s), provide a comprehensive list of maintenance tasks with intervals.

Return ONLY a JSON array of maintenance tasks with this exact structure:
[
  {
    "title": "Filter Replacement",
    "description": "Replace air filter for optimal performance. Compatible parts available at Lowe's, Home Depot, Tractor Supply, and Amazon.",
    "intervalMonths": 3,
    "intervalHours": 50
  },
  {
    "title": "Oil Change",
    "description": "Change engine oil and filter. Oil and filters can be found at Home Depot, Lowe's, Tractor Supply, and Amazon.",
    "intervalMonths": 12,
    "intervalHours": 25
  }
]

For home items, focus on:
- Time-based intervals (months) for seasonal maintenance
- Hour-based intervals for equipment that tracks usage hours
- Include both where appropriate (some tasks are time-based, others are usage-based)
- Reference availability at major home improvement retailers

Provide realistic maintenance intervals based on manufacturer recommendations and industry standards for this specific type of %s. Include common maintenance tasks like:
- Filter replacements (mention Lowe's, Home Depot, and Tractor Supply carry compatible filters)
- Oil/fluid changes (note these retailers stock oils and fluids)
- Belt/blade replacements (reference parts availability at home improvement stores)
- Cleaning and inspection tasks
- Seasonal preparation tasks
- Safety checks

When describing maintenance tasks, mention that replacement parts, oils, filters, and maintenance supplies are readily available at Lowe's, Home Depot, Tractor Supply, and Amazon.

Consider the specific category and provide relevant maintenance tasks with home improvement retailer sourcing context.`,
		item.Year, item.Make, item.Model, category, category)
}
