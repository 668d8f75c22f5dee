package output

// htmlTemplate is the main HTML template for the report
const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Benchmark Report - {{.Dir}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container {
            max-width: 960px;
            margin: 0 auto;
            padding: 2rem;
        }

        h1 {
            font-size: 1.25rem;
            margin-bottom: 1.5rem;
            color: var(--text-secondary);
            word-break: break-all;
        }

        .benchmark {
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            box-shadow: var(--shadow);
            margin-bottom: 1.5rem;
            padding: 1.5rem;
        }

        .benchmark h2 {
            font-size: 1.1rem;
            margin-bottom: 1rem;
        }

        table {
            width: 100%;
            border-collapse: collapse;
            font-variant-numeric: tabular-nums;
        }

        th, td {
            text-align: right;
            padding: 0.4rem 0.75rem;
            border-bottom: 1px solid var(--border-color);
        }

        th:first-child, td:first-child {
            text-align: left;
        }

        th {
            color: var(--text-secondary);
            font-weight: 600;
            font-size: 0.85rem;
            text-transform: uppercase;
        }

        .bar {
            background: var(--bg-secondary);
            border-radius: 3px;
            height: 0.6rem;
            min-width: 8rem;
            overflow: hidden;
        }

        .bar > div {
            background: var(--accent-primary);
            height: 100%;
        }

        .memory {
            margin-top: 0.75rem;
            color: var(--text-secondary);
            font-size: 0.9rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Dir}}</h1>
        {{range .Benchmarks}}
        <div class="benchmark">
            <h2>{{.Name}}</h2>
            <table>
                <thead>
                    <tr>
                        <th>Topic</th>
                        <th>Mean</th>
                        <th>Filtered</th>
                        <th>Min</th>
                        <th>Max</th>
                        <th>Count</th>
                        <th></th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Rows}}
                    <tr>
                        <td>{{.Topic}}</td>
                        <td>{{.Mean}}</td>
                        <td>{{.Filtered}}</td>
                        <td>{{.Min}}</td>
                        <td>{{.Max}}</td>
                        <td>{{.Count}}</td>
                        <td><div class="bar"><div style="width: {{printf "%.0f" .BarPercent}}%"></div></div></td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
            {{if .HasMemory}}
            <div class="memory">Peak RSS {{.PeakRSS}} across {{.Iterations}} iterations</div>
            {{end}}
        </div>
        {{end}}
    </div>
</body>
</html>
`
