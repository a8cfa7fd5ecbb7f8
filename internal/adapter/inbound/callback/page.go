package callback

// callbackPage is served at /auth-callback.html. It reports the login
// result to the server, then closes itself. If the user closes it first,
// or the report does not get through, the pagehide beacon reports the
// closure. A window closed before the provider redirects here is never
// reported.
const callbackPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Signing in…</title>
<style>
body { font-family: system-ui, sans-serif; background: #111827; color: #f9fafb;
       display: flex; align-items: center; justify-content: center; height: 100vh; margin: 0; }
</style>
</head>
<body>
<p id="status">Completing sign-in…</p>
<script>
(function () {
  var params = new URLSearchParams(window.location.search);
  var handshake = params.get("handshake") || "";
  var failed = params.has("error");
  var reported = false;

  window.addEventListener("pagehide", function () {
    if (!reported && navigator.sendBeacon) {
      navigator.sendBeacon("/auth/closed", JSON.stringify({ handshake: handshake }));
    }
  });

  fetch("/auth/message", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({
      type: failed ? "GOOGLE_AUTH_ERROR" : "GOOGLE_AUTH_SUCCESS",
      handshake: handshake,
      session_token: params.get("token") || params.get("session") || ""
    })
  }).then(function (resp) {
    if (!resp.ok) {
      throw new Error("status " + resp.status);
    }
    reported = true;
    document.getElementById("status").textContent =
      failed ? "Sign-in failed. You can close this window." : "Signed in. You can close this window.";
    window.close();
  }).catch(function () {
    document.getElementById("status").textContent =
      "Could not reach appgate. Close this window and try again from your terminal.";
  });
})();
</script>
</body>
</html>
`
