package weather

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// cityQueries maps seeded destination names to the query form the API
// resolves most reliably.
var cityQueries = map[string]string{
	"Paris":     "Paris,FR",
	"Barcelona": "Barcelona,ES",
	"Roma":      "Rome,IT",
	"Rome":      "Rome,IT",
	"Madrid":    "Madrid,ES",
	"Lisboa":    "Lisbon,PT",
	"Lisbon":    "Lisbon,PT",
}

// OpenWeather fetches current conditions and a short forecast from the
// OpenWeatherMap API. Summary never fails: any lookup problem degrades
// to an advisory message so the caller can always build a prompt.
type OpenWeather struct {
	apiKey  string
	baseURL string
	units   string
	lang    string
	client  *http.Client
	logger  *slog.Logger
}

type Config struct {
	APIKey  string
	BaseURL string
	Units   string
	Lang    string
	Logger  *slog.Logger
}

func New(cfg Config) *OpenWeather {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OpenWeather{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		units:   cfg.Units,
		lang:    cfg.Lang,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  cfg.Logger,
	}
}

type currentResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastResponse struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Summary returns a textual report of current conditions plus a daily
// forecast line per upcoming day.
func (w *OpenWeather) Summary(city string) string {
	query := CityQuery(city)

	current, err := w.current(query)
	if err != nil {
		w.logger.Warn("weather lookup failed", "city", city, "error", err)
		return fallbackMessage(city)
	}

	var b strings.Builder
	description := ""
	if len(current.Weather) > 0 {
		description = capitalize(current.Weather[0].Description)
	}
	fmt.Fprintf(&b, "Current weather in %s:\n", city)
	fmt.Fprintf(&b, "- Temperature: %.1f°C (feels like %.1f°C)\n", current.Main.Temp, current.Main.FeelsLike)
	if description != "" {
		fmt.Fprintf(&b, "- Conditions: %s\n", description)
	}
	fmt.Fprintf(&b, "- Humidity: %d%%\n", current.Main.Humidity)
	fmt.Fprintf(&b, "- Wind: %.1f m/s\n", current.Wind.Speed)

	if forecast, err := w.forecast(query, 5); err != nil {
		w.logger.Warn("forecast lookup failed", "city", city, "error", err)
	} else if forecast != "" {
		b.WriteString("\nForecast for the next days:\n")
		b.WriteString(forecast)
	}

	b.WriteString("\nThis information is current and should be considered when planning outdoor activities.\n")
	return b.String()
}

func (w *OpenWeather) current(query string) (*currentResponse, error) {
	var out currentResponse
	if err := w.get("/weather", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// forecast returns one line per day, sampling the 3-hourly feed at
// 8-reading strides.
func (w *OpenWeather) forecast(query string, days int) (string, error) {
	const readingsPerDay = 8
	var out forecastResponse
	params := url.Values{
		"q":   {query},
		"cnt": {fmt.Sprintf("%d", days*readingsPerDay)},
	}
	if err := w.get("/forecast", params, &out); err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 0; i < len(out.List) && i < days*readingsPerDay; i += readingsPerDay {
		reading := out.List[i]
		date := reading.DtTxt
		if fields := strings.Fields(date); len(fields) > 0 {
			date = fields[0]
		}
		description := ""
		if len(reading.Weather) > 0 {
			description = reading.Weather[0].Description
		}
		fmt.Fprintf(&b, "- %s: %.1f°C, %s\n", date, reading.Main.Temp, description)
	}
	return b.String(), nil
}

func (w *OpenWeather) get(path string, params url.Values, out any) error {
	params.Set("appid", w.apiKey)
	params.Set("units", w.units)
	params.Set("lang", w.lang)

	resp, err := w.client.Get(w.baseURL + path + "?" + params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CityQuery converts a destination name into the query string sent to
// the API, falling back to the name itself for unknown cities.
func CityQuery(city string) string {
	if q, ok := cityQueries[city]; ok {
		return q
	}
	return city
}

func fallbackMessage(city string) string {
	return fmt.Sprintf("Current weather for %s could not be retrieved. "+
		"Check the forecast before the trip on a weather service such as weather.com or accuweather.com.\n", city)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
