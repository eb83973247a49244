package tool

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spetersoncode/assistant/internal/openweather"
)

// WeatherService fetches current conditions. *openweather.Client implements it.
type WeatherService interface {
	CurrentWeather(ctx context.Context, city string) (*openweather.Current, error)
}

// WeatherArgs defines arguments for the get_weather tool.
type WeatherArgs struct {
	City string `json:"city" jsonschema:"required" jsonschema_description:"The name of the city, e.g. London or New York"`
}

// GetWeather creates the get_weather tool. Unknown cities, API errors, and
// transport failures each produce a distinct message.
func GetWeather(w WeatherService) Spec {
	return Func("get_weather",
		"Get the current weather for a specific city. Use this when the user asks about weather conditions.",
		func(ctx context.Context, args WeatherArgs) (string, error) {
			cur, err := w.CurrentWeather(ctx, args.City)
			if err != nil {
				return weatherErrorMessage(args.City, err), nil
			}
			return formatWeather(cur), nil
		})
}

func weatherErrorMessage(city string, err error) string {
	var se *openweather.StatusError
	if errors.As(err, &se) {
		if se.NotFound() {
			return fmt.Sprintf("City '%s' not found. Please check the spelling.", city)
		}
		return fmt.Sprintf("Weather API error: %v", err)
	}
	return fmt.Sprintf("Error getting weather: %v", err)
}

func formatWeather(c *openweather.Current) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather in %s, %s:\n", c.Name, c.Sys.Country)
	fmt.Fprintf(&b, "- Condition: %s\n", capitalize(c.Description()))
	fmt.Fprintf(&b, "- Temperature: %s°C\n", formatNumber(c.Main.Temp))
	fmt.Fprintf(&b, "- Feels like: %s°C\n", formatNumber(c.Main.FeelsLike))
	fmt.Fprintf(&b, "- Humidity: %d%%", c.Main.Humidity)
	return b.String()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
