package weather

// WMO weather interpretation codes as reported by Open-Meteo.
var conditionLabels = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Light rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Light snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Light showers",
	81: "Moderate showers",
	82: "Heavy showers",
	95: "Thunderstorms",
	96: "Thunderstorms with hail",
}

func conditionLabel(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if label, ok := conditionLabels[*code]; ok {
		return label
	}
	return "Unknown"
}
