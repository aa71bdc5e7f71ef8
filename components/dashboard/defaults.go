package dashboard

// DefaultUpstreamBaseURL points at the Indian stock market API the built-in
// catalog describes. The API key always comes from configuration.
const DefaultUpstreamBaseURL = "https://stock.indianapi.in"

// DefaultEndpoints returns the built-in endpoint catalog.
func DefaultEndpoints() []EndpointDescriptor {
	return []EndpointDescriptor{
		{
			ID:          "ipo",
			Name:        "IPO Data",
			Path:        "/ipo",
			Category:    "Market Data",
			Description: "Get Initial Public Offering (IPO) information",
		},
		{
			ID:          "news",
			Name:        "Market News",
			Path:        "/news",
			Category:    "News",
			Description: "Get latest market news and updates",
		},
		{
			ID:          "stock",
			Name:        "Stock Details",
			Path:        "/stock",
			Category:    "Stocks",
			Description: "Get detailed information about a specific stock",
			Parameters: []EndpointParameter{
				{Name: "name", Type: ParamString, Required: true, Label: "Stock Name", Placeholder: "e.g., Tata Steel", Description: "Enter the stock company name"},
			},
		},
		{
			ID:          "trending",
			Name:        "Trending Stocks",
			Path:        "/trending",
			Category:    "Market Data",
			Description: "Get currently trending stocks",
		},
		{
			ID:          "statement",
			Name:        "Financial Statement",
			Path:        "/statement",
			Category:    "Financials",
			Description: "Get financial statements for a stock",
			Parameters: []EndpointParameter{
				{Name: "stock_name", Type: ParamString, Required: true, Label: "Stock Name", Placeholder: "e.g., Reliance"},
				{Name: "stats", Type: ParamString, Required: true, Label: "Statistics Type", Placeholder: "e.g., income, balance"},
			},
		},
		{
			ID:          "commodities",
			Name:        "Commodities",
			Path:        "/commodities",
			Category:    "Commodities",
			Description: "Get commodity market data",
		},
		{
			ID:          "mutual_funds",
			Name:        "Mutual Funds",
			Path:        "/mutual_funds",
			Category:    "Funds",
			Description: "Get mutual funds information",
		},
		{
			ID:          "price_shockers",
			Name:        "Price Shockers",
			Path:        "/price_shockers",
			Category:    "Market Data",
			Description: "Get stocks with significant price movements",
		},
		{
			ID:          "bse_most_active",
			Name:        "BSE Most Active",
			Path:        "/BSE_most_active",
			Category:    "Market Data",
			Description: "Get most active stocks on BSE",
		},
		{
			ID:          "nse_most_active",
			Name:        "NSE Most Active",
			Path:        "/NSE_most_active",
			Category:    "Market Data",
			Description: "Get most active stocks on NSE",
		},
		{
			ID:          "historical_data",
			Name:        "Historical Stock Data",
			Path:        "/historical_data",
			Category:    "Historical",
			Description: "Get historical stock price data",
			Parameters: []EndpointParameter{
				{Name: "stock_name", Type: ParamString, Required: true, Label: "Stock Name", Placeholder: "e.g., HDFC Bank"},
				{Name: "period", Type: ParamSelect, Label: "Period", Options: []string{"1m", "3m", "6m", "1y", "5y"}, Placeholder: "1m"},
				{Name: "filter", Type: ParamString, Label: "Filter", Placeholder: "default"},
			},
		},
		{
			ID:          "industry_search",
			Name:        "Industry Search",
			Path:        "/industry_search",
			Category:    "Search",
			Description: "Search stocks by industry",
			Parameters: []EndpointParameter{
				{Name: "query", Type: ParamString, Required: true, Label: "Search Query", Placeholder: "e.g., Technology"},
			},
		},
		{
			ID:          "stock_forecasts",
			Name:        "Stock Forecasts",
			Path:        "/stock_forecasts",
			Category:    "Analysis",
			Description: "Get stock forecasts and estimates",
			Parameters: []EndpointParameter{
				{Name: "stock_id", Type: ParamString, Required: true, Label: "Stock ID", Placeholder: "Stock identifier"},
				{Name: "measure_code", Type: ParamSelect, Label: "Measure", Options: []string{"EPS", "Revenue", "EBITDA"}, Placeholder: "EPS"},
				{Name: "period_type", Type: ParamSelect, Label: "Period Type", Options: []string{"Annual", "Quarterly"}, Placeholder: "Annual"},
				{Name: "data_type", Type: ParamSelect, Label: "Data Type", Options: []string{"Actuals", "Estimates"}, Placeholder: "Actuals"},
				{Name: "age", Type: ParamSelect, Label: "Age", Options: []string{"OneWeekAgo", "OneMonthAgo"}, Placeholder: "OneWeekAgo"},
			},
		},
		{
			ID:          "historical_stats",
			Name:        "Historical Statistics",
			Path:        "/historical_stats",
			Category:    "Historical",
			Description: "Get historical statistics for a stock",
			Parameters: []EndpointParameter{
				{Name: "stock_name", Type: ParamString, Required: true, Label: "Stock Name", Placeholder: "e.g., Infosys"},
				{Name: "stats", Type: ParamString, Required: true, Label: "Statistics Type", Placeholder: "e.g., volume, price"},
			},
		},
		{
			ID:          "corporate_actions",
			Name:        "Corporate Actions",
			Path:        "/corporate_actions",
			Category:    "Corporate",
			Description: "Get corporate actions for a stock",
			Parameters: []EndpointParameter{
				{Name: "stock_name", Type: ParamString, Required: true, Label: "Stock Name", Placeholder: "e.g., TCS"},
			},
		},
		{
			ID:          "mutual_fund_search",
			Name:        "Mutual Fund Search",
			Path:        "/mutual_fund_search",
			Category:    "Search",
			Description: "Search for mutual funds",
			Parameters: []EndpointParameter{
				{Name: "query", Type: ParamString, Required: true, Label: "Search Query", Placeholder: "e.g., SBI Bluechip"},
			},
		},
		{
			ID:          "stock_target_price",
			Name:        "Stock Target Price",
			Path:        "/stock_target_price",
			Category:    "Analysis",
			Description: "Get analyst target prices for a stock",
			Parameters: []EndpointParameter{
				{Name: "stock_id", Type: ParamString, Required: true, Label: "Stock ID", Placeholder: "Stock identifier"},
			},
		},
		{
			ID:          "mutual_funds_details",
			Name:        "Mutual Fund Details",
			Path:        "/mutual_funds_details",
			Category:    "Funds",
			Description: "Get detailed mutual fund information",
			Parameters: []EndpointParameter{
				{Name: "stock_name", Type: ParamString, Required: true, Label: "Fund Name", Placeholder: "Mutual fund name"},
			},
		},
		{
			ID:          "recent_announcements",
			Name:        "Recent Announcements",
			Path:        "/recent_announcements",
			Category:    "News",
			Description: "Get recent company announcements",
			Parameters: []EndpointParameter{
				{Name: "stock_name", Type: ParamString, Required: true, Label: "Stock Name", Placeholder: "e.g., Wipro"},
			},
		},
		{
			ID:          "52_week_high_low",
			Name:        "52 Week High/Low",
			Path:        "/fetch_52_week_high_low_data",
			Category:    "Market Data",
			Description: "Get stocks at 52-week highs and lows",
		},
	}
}

// DefaultSeedWidgets returns a starter dashboard for first boot: a few
// parameterless market-overview widgets covering each display mode.
func DefaultSeedWidgets() []AddWidgetRequest {
	return []AddWidgetRequest{
		{
			Name:            "Trending Stocks",
			EndpointID:      "trending",
			DisplayMode:     ModeTable,
			RefreshInterval: 60,
		},
		{
			Name:            "Market News",
			EndpointID:      "news",
			DisplayMode:     ModeCard,
			RefreshInterval: 300,
		},
		{
			Name:            "NSE Most Active",
			EndpointID:      "nse_most_active",
			DisplayMode:     ModeChart,
			ChartType:       ChartLine,
			RefreshInterval: 120,
		},
	}
}
