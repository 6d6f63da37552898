package gateway

// dashboardHTML is the monitoring page served at "/": a crawl-submit form,
// a keyword-search box, and a status panel polling /heartbeat every two
// seconds. Plain vanilla JS, no client-side framework or jQuery.
const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>crawlmesh monitor</title>
  <style>
    body { font-family: sans-serif; max-width: 960px; margin: 2rem auto; }
    table { border-collapse: collapse; width: 100%; margin-top: 0.5rem; }
    th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
    .badge { padding: 2px 8px; border-radius: 4px; color: white; font-size: 0.85em; }
    .badge-running { background: #28a745; }
    .badge-idle { background: #6c757d; }
    .badge-down { background: #dc3545; }
    #result-box { max-height: 250px; overflow-y: auto; border: 1px solid #ccc; padding: 8px; margin-top: 8px; }
    input, button { margin: 2px 0; }
  </style>
</head>
<body>
  <h1>crawlmesh monitor</h1>

  <h3>Submit crawl</h3>
  <input id="crawl-url" placeholder="https://example.com" size="40">
  <input id="crawl-depth" type="number" min="0" max="10" value="3" size="4">
  <label><input type="checkbox" id="crawl-restrict" checked> restrict to domain</label>
  <button id="crawl-submit">Submit</button>
  <div id="crawl-message"></div>

  <h3>Search</h3>
  <input id="search-keyword" placeholder="keyword" size="30">
  <button id="search-submit">Search</button>
  <div id="result-box" style="display:none;"></div>

  <h3>Crawlers</h3>
  <div id="crawler-panel">Loading...</div>

  <h3>Indexers</h3>
  <div id="indexer-panel">Loading...</div>

  <script>
    function badge(status) {
      if (status === "running") return '<span class="badge badge-running">running</span>';
      if (status === "idle") return '<span class="badge badge-idle">idle</span>';
      return '<span class="badge badge-down">not active</span>';
    }

    function renderPanel(rows, targetId) {
      var html = "<table><thead><tr><th>node</th><th>ip</th><th>status</th><th>urls</th><th>last seen</th></tr></thead><tbody>";
      if (rows.length === 0) {
        html += "<tr><td colspan=5>no data</td></tr>";
      } else {
        rows.forEach(function (row) {
          html += "<tr><td>" + row.node_id + "</td><td>" + (row.ip || "") + "</td><td>" +
            badge(row.status) + "</td><td>" + row.url_count + "</td><td>" + row.last_seen + "</td></tr>";
        });
      }
      html += "</tbody></table>";
      document.getElementById(targetId).innerHTML = html;
    }

    function fetchHeartbeat() {
      fetch("/heartbeat").then(function (r) { return r.json(); }).then(function (data) {
        data = data || [];
        renderPanel(data.filter(function (r) { return r.role === "crawler"; }), "crawler-panel");
        renderPanel(data.filter(function (r) { return r.role === "indexer"; }), "indexer-panel");
      }).catch(function () {
        document.getElementById("crawler-panel").textContent = "failed to fetch status";
        document.getElementById("indexer-panel").textContent = "failed to fetch status";
      });
    }

    document.getElementById("crawl-submit").addEventListener("click", function () {
      var url = document.getElementById("crawl-url").value.trim();
      var depth = parseInt(document.getElementById("crawl-depth").value, 10);
      var restrict = document.getElementById("crawl-restrict").checked;
      if (!url) { document.getElementById("crawl-message").textContent = "enter a url"; return; }

      fetch("/crawl", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({ url: url, max_depth: depth, domain_restricted: restrict })
      }).then(function (r) { return r.json().then(function (body) { return { ok: r.ok, body: body }; }); })
        .then(function (res) {
          document.getElementById("crawl-message").textContent = res.ok ? res.body.message : (res.body.error || "failed");
        }).catch(function () {
          document.getElementById("crawl-message").textContent = "failed to contact master";
        });
    });

    document.getElementById("search-submit").addEventListener("click", function () {
      var q = document.getElementById("search-keyword").value.trim();
      if (!q) { return; }
      fetch("/search?keyword=" + encodeURIComponent(q)).then(function (r) { return r.json(); }).then(function (data) {
        var results = data.urls || [];
        var box = document.getElementById("result-box");
        if (results.length === 0) {
          box.textContent = "no results found";
        } else {
          box.innerHTML = "<ul>" + results.map(function (u) {
            return "<li><a href=\"" + u + "\" target=\"_blank\">" + u + "</a></li>";
          }).join("") + "</ul>";
        }
        box.style.display = "block";
      });
    });

    fetchHeartbeat();
    setInterval(fetchHeartbeat, 2000);
  </script>
</body>
</html>
`
