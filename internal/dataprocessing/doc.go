// Package dataprocessing turns raw bond futures tick exports into a
// normalized, session-keyed relative price series and answers chart queries
// over it.
//
// # Stages
//
//  1. Parser: ReadCSV / ReadXLSX load raw Date and price text
//  2. Cleaning: ParseTimestamp and ParsePrice produce serial dates and decimals
//  3. Sessions: TradingDay assigns each tick to the 18:00 to 17:59 session it belongs to
//  4. Gap filling (optional): GapFiller resamples sessions onto a fixed grid
//  5. Aggregation: RelativePrices and WeekdayStats enrich every row
//
// Pipeline.Build runs the stages and returns an immutable domain.Table.
//
// # Usage
//
//	ticks, err := dataprocessing.ReadFile("data/ZN.csv")
//	if err != nil {
//	    return err
//	}
//	table, stats, err := dataprocessing.NewPipeline(dataprocessing.DefaultOptions(), logger).
//	    Build(ctx, domain.TableInfo{Ticker: "ZN"}, ticks)
//
// Querying:
//
//	resp, err := dataprocessing.Query(table, domain.ChartQuery{
//	    SelectionMode: domain.SelectionWeekday,
//	    Weekdays:      []string{"Monday"},
//	    AggMode:       domain.AggWeekday,
//	})
//
// # Error Handling
//
// Unreadable prices become NaN and unreadable timestamps skip the row; a
// single bad row never fails a build. Query only fails for malformed dates
// (ErrInvalidQuery); callers turn that into a no-data response naming the
// date rather than a client error.
package dataprocessing
