// Package wmo maps WMO present-weather codes (0-99) to display labels.
package wmo

import "strings"

const (
	LangEnglish = "en"
	LangChinese = "zh"
)

// Table is an immutable code to label mapping. The zero value is not usable;
// obtain tables through For.
type Table struct {
	lang     string
	labels   [100]string
	fallback string
}

type row struct {
	codes []int
	label string
}

var english = build(LangEnglish, "❓ Unknown weather code", []row{
	{[]int{0}, "☀️ Clear"},
	{[]int{1, 2}, "⛅ Partly cloudy"},
	{[]int{3}, "☁️ Overcast"},
	{[]int{4}, "🌫️ Smoke"},
	{[]int{5}, "🌫️ Haze"},
	{[]int{6}, "💨 Widespread dust"},
	{[]int{7}, "💨 Blowing dust or sand"},
	{[]int{8}, "🌪️ Dust whirls"},
	{[]int{9}, "🌪️ Duststorm or sandstorm"},
	{[]int{10}, "🌫️ Mist"},
	{[]int{11, 12}, "🌫️ Shallow fog"},
	{[]int{13}, "⚡ Lightning"},
	{[]int{14, 15}, "🌧️ Distant precipitation"},
	{[]int{16}, "🌧️ Nearby precipitation"},
	{[]int{17}, "⚡ Thunder, no precipitation"},
	{[]int{18}, "🌪️ Squalls"},
	{[]int{19}, "🌪️ Funnel cloud"},
	{[]int{20}, "🌦️ Drizzle"},
	{[]int{21}, "🌧️ Rain"},
	{[]int{22}, "❄️ Snow"},
	{[]int{23}, "🌨️ Rain and snow"},
	{[]int{24}, "❄️ Freezing rain"},
	{[]int{25}, "🌦️ Rain showers"},
	{[]int{26}, "❄️ Snow showers"},
	{[]int{27}, "⚪ Hail"},
	{[]int{28}, "🌫️ Fog"},
	{[]int{29}, "⚡ Thunderstorm"},
	{[]int{30}, "🌪️ Duststorm, decreasing"},
	{[]int{31}, "🌪️ Duststorm"},
	{[]int{32}, "🌪️ Duststorm, increasing"},
	{[]int{33}, "🌪️ Severe duststorm, decreasing"},
	{[]int{34}, "🌪️ Severe duststorm"},
	{[]int{35}, "🌪️ Severe duststorm, increasing"},
	{[]int{36, 38}, "❄️ Blowing snow"},
	{[]int{37, 39}, "❄️ Heavy drifting snow"},
	{[]int{40}, "🌫️ Distant fog"},
	{[]int{41}, "🌫️ Fog patches"},
	{[]int{42, 44, 46}, "🌫️ Fog"},
	{[]int{43, 45, 47}, "🌫️ Dense fog"},
	{[]int{48}, "❄️ Rime fog"},
	{[]int{49}, "❄️ Dense rime fog"},
	{[]int{50, 51}, "🌦️ Drizzle, slight"},
	{[]int{52, 53}, "🌦️ Drizzle, moderate"},
	{[]int{54, 55}, "🌧️ Drizzle, heavy"},
	{[]int{56}, "❄️ Freezing drizzle, slight"},
	{[]int{57}, "❄️ Freezing drizzle, moderate or heavy"},
	{[]int{58}, "🌦️ Drizzle and rain, slight"},
	{[]int{59}, "🌧️ Drizzle and rain, moderate or heavy"},
	{[]int{60, 61}, "🌦️ Rain, slight"},
	{[]int{62, 63}, "🌧️ Rain, moderate"},
	{[]int{64, 65}, "🌧️ Rain, heavy"},
	{[]int{66}, "❄️ Freezing rain, slight"},
	{[]int{67}, "❄️ Freezing rain, moderate or heavy"},
	{[]int{68}, "🌨️ Rain and snow, slight"},
	{[]int{69}, "🌨️ Rain and snow, moderate or heavy"},
	{[]int{70, 71}, "❄️ Snow, slight"},
	{[]int{72, 73}, "❄️ Snow, moderate"},
	{[]int{74, 75}, "❄️ Snow, heavy"},
	{[]int{76}, "❄️ Diamond dust"},
	{[]int{77}, "❄️ Snow grains"},
	{[]int{78}, "❄️ Snow crystals"},
	{[]int{79}, "❄️ Ice pellets"},
	{[]int{80}, "🌦️ Rain showers, slight"},
	{[]int{81}, "🌧️ Rain showers, moderate or heavy"},
	{[]int{82}, "🌧️ Rain showers, violent"},
	{[]int{83}, "🌨️ Rain and snow showers, slight"},
	{[]int{84}, "🌨️ Rain and snow showers, moderate or heavy"},
	{[]int{85}, "❄️ Snow showers, slight"},
	{[]int{86}, "❄️ Snow showers, moderate or heavy"},
	{[]int{87}, "❄️ Snow pellet showers, slight"},
	{[]int{88}, "❄️ Snow pellet showers, moderate or heavy"},
	{[]int{89}, "⚪ Hail showers, slight"},
	{[]int{90}, "⚪ Hail showers, moderate or heavy"},
	{[]int{91}, "⚡🌧️ Slight rain after thunderstorm"},
	{[]int{92}, "⚡🌧️ Moderate or heavy rain after thunderstorm"},
	{[]int{93}, "⚡🌨️ Slight snow after thunderstorm"},
	{[]int{94}, "⚡🌨️ Moderate or heavy snow after thunderstorm"},
	{[]int{95}, "⚡ Thunderstorm"},
	{[]int{96}, "⚡⚪ Thunderstorm with hail"},
	{[]int{97}, "⚡ Heavy thunderstorm"},
	{[]int{98}, "⚡🌪️ Thunderstorm with duststorm"},
	{[]int{99}, "⚡⚪ Severe thunderstorm with hail"},
})

var chinese = build(LangChinese, "❓ 未知天气代码", []row{
	{[]int{0}, "☀️ 晴朗"},
	{[]int{1, 2}, "⛅ 部分多云"},
	{[]int{3}, "☁️ 阴天"},
	{[]int{4}, "🌫️ 烟雾"},
	{[]int{5}, "🌫️ 霾"},
	{[]int{6}, "💨 浮尘"},
	{[]int{7}, "💨 扬沙"},
	{[]int{8}, "🌪️ 尘卷风"},
	{[]int{9}, "🌪️ 沙尘暴"},
	{[]int{10}, "🌫️ 薄雾"},
	{[]int{11, 12}, "🌫️ 浅雾"},
	{[]int{13}, "⚡ 闪电"},
	{[]int{14, 15}, "🌧️ 远降水"},
	{[]int{16}, "🌧️ 近降水"},
	{[]int{17}, "⚡ 雷暴无降水"},
	{[]int{18}, "🌪️ 飑"},
	{[]int{19}, "🌪️ 漏斗云"},
	{[]int{20}, "🌦️ 毛毛雨"},
	{[]int{21}, "🌧️ 雨"},
	{[]int{22}, "❄️ 雪"},
	{[]int{23}, "🌨️ 雨夹雪"},
	{[]int{24}, "❄️ 冻雨"},
	{[]int{25}, "🌦️ 阵雨"},
	{[]int{26}, "❄️ 阵雪"},
	{[]int{27}, "⚪ 冰雹"},
	{[]int{28}, "🌫️ 雾"},
	{[]int{29}, "⚡ 雷暴"},
	{[]int{30}, "🌪️ 沙尘暴减弱"},
	{[]int{31}, "🌪️ 沙尘暴"},
	{[]int{32}, "🌪️ 沙尘暴增强"},
	{[]int{33}, "🌪️ 强沙尘暴减弱"},
	{[]int{34}, "🌪️ 强沙尘暴"},
	{[]int{35}, "🌪️ 强沙尘暴增强"},
	{[]int{36, 38}, "❄️ 低吹雪"},
	{[]int{37, 39}, "❄️ 强吹雪"},
	{[]int{40}, "🌫️ 远雾"},
	{[]int{41}, "🌫️ 片状雾"},
	{[]int{42, 44, 46}, "🌫️ 雾"},
	{[]int{43, 45, 47}, "🌫️ 浓雾"},
	{[]int{48}, "❄️ 雾凇"},
	{[]int{49}, "❄️ 浓雾凇"},
	{[]int{50, 51}, "🌦️ 间歇性小毛毛雨"},
	{[]int{52, 53}, "🌦️ 持续性毛毛雨"},
	{[]int{54, 55}, "🌧️ 间歇性大毛毛雨"},
	{[]int{56}, "❄️ 冻毛毛雨"},
	{[]int{57}, "❄️ 中到强冻毛毛雨"},
	{[]int{58}, "🌦️ 毛毛雨和小雨"},
	{[]int{59}, "🌧️ 毛毛雨和中到大雨"},
	{[]int{60, 61}, "🌦️ 间歇性小雨"},
	{[]int{62, 63}, "🌧️ 间歇性中雨"},
	{[]int{64, 65}, "🌧️ 间歇性大雨"},
	{[]int{66}, "❄️ 冻雨"},
	{[]int{67}, "❄️ 中到强冻雨"},
	{[]int{68}, "🌨️ 雨夹雪"},
	{[]int{69}, "🌨️ 中到大雨夹雪"},
	{[]int{70, 71}, "❄️ 间歇性小雪"},
	{[]int{72, 73}, "❄️ 间歇性中雪"},
	{[]int{74, 75}, "❄️ 间歇性大雪"},
	{[]int{76}, "❄️ 冰晶"},
	{[]int{77}, "❄️ 雪粒"},
	{[]int{78}, "❄️ 星状雪晶"},
	{[]int{79}, "❄️ 冰粒"},
	{[]int{80}, "🌦️ 小阵雨"},
	{[]int{81}, "🌧️ 中到大阵雨"},
	{[]int{82}, "🌧️ 强阵雨"},
	{[]int{83}, "🌨️ 小阵雨夹雪"},
	{[]int{84}, "🌨️ 中到大阵雨夹雪"},
	{[]int{85}, "❄️ 小阵雪"},
	{[]int{86}, "❄️ 中到大阵雪"},
	{[]int{87}, "❄️ 小阵雪粒或小冰雹"},
	{[]int{88}, "❄️ 中到大阵雪粒或小冰雹"},
	{[]int{89}, "⚪ 小阵冰雹"},
	{[]int{90}, "⚪ 中到大阵冰雹"},
	{[]int{91}, "⚡🌧️ 小雨，前一小时有雷暴"},
	{[]int{92}, "⚡🌧️ 中到大雨，前一小时有雷暴"},
	{[]int{93}, "⚡🌨️ 小雪或雨夹雪，前一小时有雷暴"},
	{[]int{94}, "⚡🌨️ 中到大雪或雨夹雪，前一小时有雷暴"},
	{[]int{95}, "⚡ 雷暴，无冰雹"},
	{[]int{96}, "⚡⚪ 雷暴伴有冰雹"},
	{[]int{97}, "⚡ 强雷暴，无冰雹"},
	{[]int{98}, "⚡🌪️ 雷暴伴沙尘暴"},
	{[]int{99}, "⚡⚪ 强雷暴伴有冰雹"},
})

func build(lang, fallback string, rows []row) *Table {
	t := &Table{lang: lang, fallback: fallback}
	for i := range t.labels {
		t.labels[i] = fallback
	}
	for _, r := range rows {
		for _, code := range r.codes {
			t.labels[code] = r.label
		}
	}
	return t
}

// For returns the table for lang. Unknown or empty languages get English.
func For(lang string) *Table {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case LangChinese, "zh-cn", "zh_cn":
		return chinese
	default:
		return english
	}
}

// Describe returns the English label for code.
func Describe(code int) string {
	return english.Describe(code)
}

// Describe is total: codes outside 0-99 get the fallback label.
func (t *Table) Describe(code int) string {
	if code < 0 || code >= len(t.labels) {
		return t.fallback
	}
	return t.labels[code]
}

func (t *Table) Lang() string {
	return t.lang
}

func (t *Table) Fallback() string {
	return t.fallback
}

// Entries returns a copy of the table indexed by code.
func (t *Table) Entries() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels[:])
	return out
}
