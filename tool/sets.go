package tool

// ResearchTools returns the research assistant's tools in the order they are
// advertised to the model: search_web, get_weather, calculator.
func ResearchTools(search WebSearcher, weather WeatherService) []Spec {
	return []Spec{
		SearchWeb(search),
		GetWeather(weather),
		Calculator(),
	}
}
