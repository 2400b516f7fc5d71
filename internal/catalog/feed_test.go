package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/shopdesk-backend/pkg/errors"
)

const sampleFeed = `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Apple iPhone XS Max 512GB (gold)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Diagonal (inch)": 6.5
      "Resolution (px)": 2688x1242
      "Built-in memory (GB)": 512
      "Color": gold
  - id: 4216313
    category: 15
    name: Charger 18W
    price: "1490.00"
    price_rrc: 1990
    quantity: 0
`

func feedDetails(t *testing.T, err error) map[string][]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string][]string)
	require.True(t, ok, "details type %T", typed.Details())
	return details
}

func TestParseFeed(t *testing.T) {
	feed, err := ParseFeed([]byte(sampleFeed))
	require.NoError(t, err)

	require.Equal(t, "Svyaznoy", feed.Shop)
	require.Equal(t, []FeedCategory{{ID: 224, Name: "Smartphones"}, {ID: 15, Name: "Accessories"}}, feed.Categories)
	require.Len(t, feed.Goods, 2)

	phone := feed.Goods[0]
	require.EqualValues(t, 4216292, phone.ID)
	require.EqualValues(t, 224, phone.CategoryID)
	require.EqualValues(t, 110000, phone.Price)
	require.EqualValues(t, 116990, phone.PriceRRC)
	require.EqualValues(t, 14, phone.Quantity)
	require.Equal(t, []FeedParameter{
		{Name: "Built-in memory (GB)", Value: "512"},
		{Name: "Color", Value: "gold"},
		{Name: "Diagonal (inch)", Value: "6.5"},
		{Name: "Resolution (px)", Value: "2688x1242"},
	}, phone.Parameters)

	charger := feed.Goods[1]
	require.EqualValues(t, 1490, charger.Price)
	require.Zero(t, charger.Quantity)
	require.Empty(t, charger.Parameters)

	require.Equal(t, []string{"Built-in memory (GB)", "Color", "Diagonal (inch)", "Resolution (px)"}, feed.ParameterNames())
}

func TestParseFeedWithoutGoods(t *testing.T) {
	feed, err := ParseFeed([]byte("shop: Empty\ncategories:\n  - id: 1\n    name: Misc\n"))
	require.NoError(t, err)
	require.Empty(t, feed.Goods)
	require.NotNil(t, feed.ParameterNames())
	require.Empty(t, feed.ParameterNames())
}

func TestParseFeedAggregatesProblems(t *testing.T) {
	raw := `
categories:
  - id: 1
    name: Phones
  - id: 1
    name: Tablets
goods:
  - id: 10
    category: 7
    name: ""
    price: 99.5
    price_rrc: -1
    quantity: many
`
	_, err := ParseFeed([]byte(raw))
	details := feedDetails(t, err)

	require.Equal(t, []string{"is required"}, details["shop"])
	require.Equal(t, []string{"duplicate category id 1"}, details["categories[1].id"])
	require.Equal(t, []string{"category 7 is not listed in the feed"}, details["goods[0].category"])
	require.Equal(t, []string{"is required"}, details["goods[0].name"])
	require.Equal(t, []string{"must be a whole number"}, details["goods[0].price"])
	require.Equal(t, []string{"must not be negative"}, details["goods[0].price_rrc"])
	require.Equal(t, []string{"must be a number"}, details["goods[0].quantity"])
}

func TestParseFeedRejectsMissingCategoriesAndLongNames(t *testing.T) {
	raw := "shop: ThisShopNameIsDefinitelyLongerThanFiftyCharactersInTotal\n"
	_, err := ParseFeed([]byte(raw))
	details := feedDetails(t, err)
	require.Contains(t, details, "shop")
	require.Equal(t, []string{"is required"}, details["categories"])
}

func TestParseFeedMalformedAndEmpty(t *testing.T) {
	_, err := ParseFeed([]byte("shop: [unterminated"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeMalformedPayload))

	_, err = ParseFeed([]byte("   \n"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseFeedRejectsParameterNamesThatCollideAfterTrimming(t *testing.T) {
	raw := `
shop: Svyaznoy
categories:
  - id: 224
    name: Smartphones
goods:
  - id: 1
    category: 224
    name: Phone
    price: 100
    price_rrc: 120
    quantity: 1
    parameters:
      "RAM": 8
      " RAM": 6
`
	_, err := ParseFeed([]byte(raw))
	details := feedDetails(t, err)
	require.Equal(t, []string{`duplicates parameter " RAM"`}, details["goods[0].parameters.RAM"])
}
