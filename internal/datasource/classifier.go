package datasource

import (
	"strings"

	"github.com/yourusername/stock-compass/internal/models"
)

// headlineRule maps a keyword found in a headline to a tone and an
// expected price impact. Rules are ordered; the first match wins.
type headlineRule struct {
	keyword   string
	sentiment models.SentimentClass
	impact    models.ImpactClass
}

// Earnings, deals and capital events move prices the most, so they sit
// at the top of the table. Broker commentary and product news rank
// below them.
var headlineRules = []headlineRule{
	{"영업이익률", models.SentimentPositive, models.ImpactHigh},
	{"영업이익", models.SentimentPositive, models.ImpactHigh},
	{"순이익", models.SentimentPositive, models.ImpactHigh},
	{"실적", models.SentimentPositive, models.ImpactHigh},
	{"매출", models.SentimentPositive, models.ImpactHigh},
	{"흑자", models.SentimentPositive, models.ImpactHigh},
	{"적자", models.SentimentNegative, models.ImpactHigh},
	{"컨센서스", models.SentimentPositive, models.ImpactHigh},
	{"수주", models.SentimentPositive, models.ImpactHigh},
	{"계약", models.SentimentPositive, models.ImpactHigh},
	{"납품", models.SentimentPositive, models.ImpactHigh},
	{"공급", models.SentimentPositive, models.ImpactHigh},
	{"MOU", models.SentimentPositive, models.ImpactHigh},
	{"인수", models.SentimentPositive, models.ImpactHigh},
	{"합병", models.SentimentPositive, models.ImpactHigh},
	{"지분", models.SentimentPositive, models.ImpactHigh},
	{"무상증자", models.SentimentPositive, models.ImpactHigh},
	{"유상증자", models.SentimentNegative, models.ImpactHigh},
	{"상장폐지", models.SentimentNegative, models.ImpactHigh},
	{"상장", models.SentimentPositive, models.ImpactHigh},
	{"신제품", models.SentimentPositive, models.ImpactMedium},
	{"출시", models.SentimentPositive, models.ImpactMedium},
	{"양산", models.SentimentPositive, models.ImpactMedium},
	{"목표가", models.SentimentPositive, models.ImpactMedium},
	{"투자의견", models.SentimentPositive, models.ImpactMedium},
	{"급등", models.SentimentPositive, models.ImpactMedium},
	{"급락", models.SentimentNegative, models.ImpactMedium},
	{"상승", models.SentimentPositive, models.ImpactMedium},
	{"하락", models.SentimentNegative, models.ImpactMedium},
	{"신고가", models.SentimentPositive, models.ImpactMedium},
	{"배당", models.SentimentPositive, models.ImpactMedium},
	{"자사주", models.SentimentPositive, models.ImpactMedium},
	{"구조조정", models.SentimentNegative, models.ImpactMedium},
	{"파업", models.SentimentNegative, models.ImpactMedium},
	{"소송", models.SentimentNegative, models.ImpactMedium},
	{"과징금", models.SentimentNegative, models.ImpactMedium},
	{"제재", models.SentimentNegative, models.ImpactMedium},
	{"규제", models.SentimentNegative, models.ImpactMedium},
	{"특허", models.SentimentPositive, models.ImpactMedium},
	{"승인", models.SentimentPositive, models.ImpactMedium},
	{"허가", models.SentimentPositive, models.ImpactMedium},
}

// ClassifyHeadline assigns a tone and an expected price impact to a
// news headline. Headlines matching no rule are neutral with low
// impact.
func ClassifyHeadline(title string) (models.SentimentClass, models.ImpactClass) {
	for _, rule := range headlineRules {
		if strings.Contains(title, rule.keyword) {
			return rule.sentiment, rule.impact
		}
	}
	return models.SentimentNeutral, models.ImpactLow
}
